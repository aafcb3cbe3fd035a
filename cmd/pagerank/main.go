package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/linksrus/parallelrank/harness"
	"github.com/linksrus/parallelrank/pagerank"
	"github.com/linksrus/parallelrank/report"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

var (
	appName = "parallelrank"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry

	errUsage = xerrors.New("usage: pagerank [options] <graph-file> <thread-count>")
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "Calculate PageRank scores in parallel and validate them against a serial reference"
	app.ArgsUsage = "<graph-file> <thread-count>"
	app.Flags = []cli.Flag{
		cli.Float64Flag{
			Name:   "damping",
			Value:  0.85,
			EnvVar: "DAMPING",
			Usage:  "The PageRank damping factor",
		},
		cli.Float64Flag{
			Name:   "convergence",
			Value:  1e-7,
			EnvVar: "CONVERGENCE",
			Usage:  "Stop once the sum of absolute score differences drops below this value; 0 runs exactly max-iterations iterations",
		},
		cli.IntFlag{
			Name:   "max-iterations",
			Value:  20,
			EnvVar: "MAX_ITERATIONS",
			Usage:  "The maximum number of iterations to execute",
		},
		cli.IntFlag{
			Name:   "chunk-size",
			Value:  pagerank.DefaultChunkSize,
			EnvVar: "CHUNK_SIZE",
			Usage:  "The number of consecutive vertices assigned to a worker at a time",
		},
		cli.StringFlag{
			Name:   "graph-backing",
			Value:  string(harness.BackingCSR),
			EnvVar: "GRAPH_BACKING",
			Usage:  "The in-memory graph representation to use (csr or map)",
		},
		cli.StringFlag{
			Name:   "output",
			EnvVar: "OUTPUT",
			Usage:  "The file to write the scores to; defaults to output_<graph-file> next to the input",
		},
		cli.BoolFlag{
			Name:   "skip-reference",
			EnvVar: "SKIP_REFERENCE",
			Usage:  "Skip the serial reference run and the correctness check",
		},
		cli.BoolFlag{
			Name:   "dump-metrics",
			EnvVar: "DUMP_METRICS",
			Usage:  "Print the run metrics in the Prometheus text format after the summary",
		},
		cli.StringFlag{
			Name:   "pushgateway-url",
			EnvVar: "PUSHGATEWAY_URL",
			Usage:  "If specified, push the run metrics to this Prometheus Pushgateway",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "snapshot",
			Usage:     "Convert a text edge list into the binary snapshot format",
			ArgsUsage: "<edge-list> [<out>]",
			Action:    runSnapshot,
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	if appCtx.NArg() < 2 {
		_ = cli.ShowAppHelp(appCtx)
		return errUsage
	}

	graphFile := appCtx.Args().Get(0)
	workers, err := parseThreadCount(appCtx.Args().Get(1))
	if err != nil {
		return err
	}

	outPath := appCtx.String("output")
	if outPath == "" && !strings.HasPrefix(graphFile, "postgresql://") {
		outPath = report.OutputPath(graphFile)
	}

	metrics := harness.NewMetrics()
	runner, err := harness.NewRunner(harness.Config{
		GraphSource:          graphFile,
		Backing:              harness.Backing(appCtx.String("graph-backing")),
		Workers:              workers,
		DampingFactor:        appCtx.Float64("damping"),
		ConvergenceThreshold: appCtx.Float64("convergence"),
		MaxIterations:        appCtx.Int("max-iterations"),
		ChunkSize:            appCtx.Int("chunk-size"),
		OutputPath:           outPath,
		SkipReference:        appCtx.Bool("skip-reference"),
		Metrics:              metrics,
		Logger:               logger,
	})
	if err != nil {
		return err
	}

	sum, err := runner.Run()
	if err != nil {
		return err
	}
	printSummary(appCtx, sum, workers, outPath)

	if appCtx.Bool("dump-metrics") {
		if err = dumpMetrics(appCtx, metrics); err != nil {
			return err
		}
	}

	if url := appCtx.String("pushgateway-url"); url != "" {
		if err = metrics.Push(url, appName); err != nil {
			return err
		}
		logger.WithField("url", url).Info("pushed run metrics")
	}

	if !appCtx.Bool("skip-reference") && !sum.Correct {
		return xerrors.Errorf("parallel scores do not match the serial reference: %w", sum.Mismatch)
	}
	return nil
}

func runSnapshot(appCtx *cli.Context) error {
	if appCtx.NArg() < 1 {
		_ = cli.ShowCommandHelp(appCtx, "snapshot")
		return xerrors.New("usage: pagerank snapshot <edge-list> [<out>]")
	}

	src, out := appCtx.Args().Get(0), appCtx.Args().Get(1)
	if out == "" {
		out = src + ".bin"
	}

	g, err := harness.ConvertToSnapshot(src, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(appCtx.App.Writer, "wrote snapshot %s (%d vertices, %d edges)\n", out, g.VertexCount(), g.EdgeCount())
	return nil
}

func parseThreadCount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, xerrors.Errorf("thread count must be a positive integer; got %q", arg)
	}
	return n, nil
}

func printSummary(appCtx *cli.Context, sum *harness.Summary, workers int, outPath string) {
	tw := tabwriter.NewWriter(appCtx.App.Writer, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "run id:\t%s\n", sum.RunID)
	fmt.Fprintf(tw, "vertices:\t%d\n", sum.NumVertices)
	fmt.Fprintf(tw, "edges:\t%d\n", sum.NumEdges)
	fmt.Fprintf(tw, "threads:\t%d\n", workers)
	fmt.Fprintf(tw, "iterations:\t%d (%s)\n", sum.Result.Iterations, sum.Result.State())
	fmt.Fprintf(tw, "load time:\t%s\n", fmtDuration(sum.LoadTime))
	fmt.Fprintf(tw, "rank time:\t%s\n", fmtDuration(sum.RankTime))
	if !appCtx.Bool("skip-reference") {
		fmt.Fprintf(tw, "reference time:\t%s\n", fmtDuration(sum.ReferenceTime))
		verdict := "PASS"
		if !sum.Correct {
			verdict = "FAIL"
		}
		fmt.Fprintf(tw, "verdict:\t%s\n", verdict)
	}
	if outPath != "" {
		fmt.Fprintf(tw, "output:\t%s (%s)\n", outPath, fmtDuration(sum.WriteTime))
	}
	_ = tw.Flush()
}

func dumpMetrics(appCtx *cli.Context, metrics *harness.Metrics) error {
	families, err := metrics.Registry().Gather()
	if err != nil {
		return xerrors.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(appCtx.App.Writer, mf); err != nil {
			return xerrors.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
