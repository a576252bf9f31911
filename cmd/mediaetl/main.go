package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"mediaetl/internal/config"
	"mediaetl/internal/csvreader"
	"mediaetl/internal/importer"
	"mediaetl/internal/metrics"
	"mediaetl/internal/metrics/datadog"
	"mediaetl/internal/metrics/prompush"
	"mediaetl/internal/progress"
	"mediaetl/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "mediaetl/internal/storage/all"
)

const usage = `usage: mediaetl [flags] <entity> <file>

Imports a delimited file into the destination store. <entity> is one of
users, movies, reviews; <file> is the source CSV path.
`

// main is the entry point for the import binary. It loads configuration,
// optionally initializes a metrics backend, and runs the import (or a
// dry-run preview). Exit code is 0 unless the run aborted; per-record
// failures are reported in the results table but do not change the code.
func main() {
	var (
		cfgPath           string
		dryRun            bool
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
	)

	flag.StringVar(&cfgPath, "config", "", "config JSON path (default: built-in sqlite config plus env overrides)")
	flag.BoolVar(&dryRun, "dry-run", false, "preview transformed records without writing")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	entityType, filePath := flag.Arg(0), flag.Arg(1)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose)

	ctx := context.Background()
	start := time.Now()

	if dryRun {
		if err := runDryRun(ctx, cfg, entityType, filePath); err != nil {
			fatalf("%v", err)
		}
		return
	}

	if err := previewHeaders(filePath, cfg.Import.DelimiterRune()); err != nil {
		fatalf("%v", err)
	}

	store, err := storage.New(ctx, storage.Config{
		Kind:      cfg.Storage.Kind,
		DSN:       cfg.Storage.DSN,
		Bootstrap: cfg.Storage.Bootstrap,
		Options:   cfg.Storage.Options,
	})
	if err != nil {
		fatalf("storage: %v", err)
	}
	defer store.Close()

	imp := importer.New(store, cfg.Import, nil)
	sum, err := imp.Import(ctx, entityType, filePath)
	if err != nil {
		fatalf("import: %v", err)
	}

	printSummary(sum, cfg.Import.RecentErrorCap)
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.FromEnv(), nil
	}
	return config.Load(path)
}

// setupMetrics decides the metrics backend: flag then env then disabled.
func setupMetrics(backendName, gwURL, ddAddr string, verbose bool) {
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("mediaetl", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%v", gwURL)
		}
		metrics.SetBackend(b)

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: ddAddr, Namespace: "mediaetl."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=datadog addr=%v", ddAddr)
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func runDryRun(ctx context.Context, cfg config.Config, entityType, filePath string) error {
	imp := importer.New(nil, cfg.Import, nil)
	pv, err := imp.DryRun(ctx, entityType, filePath)
	if err != nil {
		return err
	}

	fmt.Printf("Dry run: %s (%d records)\n", pv.File, pv.Total)
	printHeaderTable(pv.Headers)
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tVALID\tRECORD\tERRORS")
	for _, r := range pv.Records {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%s\n", r.Row, r.Valid, r.Record, strings.Join(r.Errors, "; "))
	}
	return tw.Flush()
}

// previewHeaders shows the normalized header table before the import starts,
// so a column-mapping surprise is visible up front.
func previewHeaders(filePath string, delim rune) error {
	rd, err := csvreader.Open(filePath, delim)
	if err != nil {
		return err
	}
	defer rd.Close()

	fmt.Println("Headers detected:")
	printHeaderTable(rd.Headers())
	return nil
}

func printHeaderTable(headers []string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tHEADER")
	for i, h := range headers {
		fmt.Fprintf(tw, "%d\t%s\n", i, h)
	}
	tw.Flush()
}

// maxDisplayedFailures bounds the failure table; the in-memory sample may
// hold more, up to the configured cap.
const maxDisplayedFailures = 10

func printSummary(sum importer.Summary, errorCap int) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", sum.RunID)
	fmt.Fprintf(tw, "Entity\t%s\n", sum.Entity)
	fmt.Fprintf(tw, "File\t%s (%s)\n", sum.File, sum.Checksum)
	fmt.Fprintf(tw, "Status\t%s\n", sum.Stats.Status)
	fmt.Fprintf(tw, "Processed\t%d\n", sum.Stats.Processed)
	fmt.Fprintf(tw, "Successful\t%d\n", sum.Stats.Succeeded)
	fmt.Fprintf(tw, "Inserted\t%d\n", sum.Stats.Inserted)
	fmt.Fprintf(tw, "Updated\t%d\n", sum.Stats.Updated)
	fmt.Fprintf(tw, "Failed\t%d\n", sum.Stats.Failed)
	fmt.Fprintf(tw, "Success rate\t%.2f%%\n", sum.Stats.SuccessRate())
	fmt.Fprintf(tw, "Duration\t%s\n", sum.Stats.Duration.Truncate(time.Millisecond))
	tw.Flush()

	shown := displayedFailures(sum.Stats.Recent)
	if len(shown) == 0 {
		return
	}
	fmt.Println("\nErrors encountered during import:")
	if sum.Stats.Failed > len(shown) {
		fmt.Printf("Showing last %d errors out of %d total errors.\n", len(shown), sum.Stats.Failed)
		fmt.Printf("Note: only the most recent %d errors are kept in memory.\n", errorCap)
	}
	etw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(etw, "ROW\tTYPE\tDETAILS")
	for _, f := range shown {
		fmt.Fprintf(etw, "%d\t%s\t%s\n", f.Row, f.Type, f.Details)
	}
	etw.Flush()
}

// displayedFailures returns the newest maxDisplayedFailures entries of the
// oldest-first sample.
func displayedFailures(recent []progress.Failure) []progress.Failure {
	if len(recent) > maxDisplayedFailures {
		return recent[len(recent)-maxDisplayedFailures:]
	}
	return recent
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
