package pagerank

import (
	"sync"
	"sync/atomic"

	"github.com/linksrus/parallelrank/pagerank/partition"
)

// chunkFunc processes the vertices in the [from, to) range.
type chunkFunc func(from, to int)

// chunk is a unit of work handed to the pool workers.
type chunk struct {
	from, to int
	fn       chunkFunc
}

// workerPool executes chunkFuncs over vertex ranges using a fixed number of
// goroutines. Chunks are pulled from a shared channel so faster workers pick
// up more of them.
type workerPool struct {
	wg              sync.WaitGroup
	chunkCh         chan chunk
	stepCompletedCh chan struct{}
	pendingInStep   int64
}

// newWorkerPool allocates the required channels and spins up numWorkers to
// process chunks. Callers must invoke close once they are done with the pool.
func newWorkerPool(numWorkers int) *workerPool {
	p := &workerPool{
		chunkCh:         make(chan chunk),
		stepCompletedCh: make(chan struct{}),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.chunkWorker()
	}
	return p
}

// close shuts down the workers and waits for them to exit.
func (p *workerPool) close() {
	close(p.chunkCh)
	p.wg.Wait()
}

// run invokes fn for every partition in r and blocks until all partitions
// have been processed. Any writes performed by fn happen-before run returns.
func (p *workerPool) run(r *partition.Range, fn chunkFunc) {
	numChunks := r.NumPartitions()
	atomic.StoreInt64(&p.pendingInStep, int64(numChunks))

	for i := 0; i < numChunks; i++ {
		from, to, _ := r.PartitionExtents(i)
		p.chunkCh <- chunk{from: from, to: to, fn: fn}
	}

	// Block until worker pool has finished processing all chunks.
	<-p.stepCompletedCh
}

// chunkWorker polls chunkCh for incoming chunks and processes them. The
// worker automatically exits when chunkCh gets closed.
func (p *workerPool) chunkWorker() {
	defer p.wg.Done()
	for c := range p.chunkCh {
		c.fn(c.from, c.to)
		if atomic.AddInt64(&p.pendingInStep, -1) == 0 {
			p.stepCompletedCh <- struct{}{}
		}
	}
}
