package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/config"
	applog "lawscraper/pkg/log"
	"lawscraper/pkg/pipeline"
	"lawscraper/pkg/search"
	"lawscraper/pkg/watch"
)

const version = "1.0.2"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "case-extraction":
		runPipelineCommand("case-extraction", os.Args[2:], func(count int) pipelineRun {
			return func(ctx context.Context, s *pipeline.Session) error {
				return s.RunCaseExtraction(ctx, count)
			}
		})
	case "legislation":
		runPipelineCommand("legislation", os.Args[2:], func(count int) pipelineRun {
			return func(ctx context.Context, s *pipeline.Session) error {
				return s.RunLegislation(ctx, count)
			}
		})
	case "case-analysis":
		runCaseAnalysis(os.Args[2:])
	case "all":
		runAll(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "version":
		fmt.Printf("lawscraper %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lawscraper - Kenya Law records scraper

Usage:
  lawscraper <command> [options]

Commands:
  case-extraction  Scrape judgment metadata into CSV
  legislation      Scrape the acts listing into categorized JSON
  case-analysis    Full-text judgment analysis into structured JSON
  all              Run all three pipelines in sequence
  watch            Re-run pipelines on a schedule
  search           Query the search index
  validate         Validate configuration file
  version          Show version info

Run 'lawscraper <command> -h' for command-specific help.`)
}

// pipelineFlags are the flags shared by every scraping subcommand.
type pipelineFlags struct {
	configFile *string
	logLevel   *string
	jsonLogs   *bool
	resume     *bool
}

func addPipelineFlags(fs *flag.FlagSet) pipelineFlags {
	return pipelineFlags{
		configFile: fs.String("config", "config.yaml", "Path to config file"),
		logLevel:   fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)"),
		jsonLogs:   fs.Bool("json-logs", false, "Emit logs as JSON"),
		resume:     fs.Bool("resume", false, "Keep prior scrape state and skip documents already captured"),
	}
}

type pipelineRun func(context.Context, *pipeline.Session) error

func runPipelineCommand(name string, args []string, makeRun func(count int) pipelineRun) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := addPipelineFlags(fs)
	count := fs.Int("count", 10, "Maximum documents to scrape (0 = all found)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper %s [options]\n\nOptions:\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(executePipeline(flags, makeRun(*count)))
}

// runCaseAnalysis adds the -urls flag on top of the shared pipeline flags.
func runCaseAnalysis(args []string) {
	fs := flag.NewFlagSet("case-analysis", flag.ExitOnError)
	flags := addPipelineFlags(fs)
	count := fs.Int("count", 10, "Maximum judgments to analyze (0 = all found)")
	urlList := fs.String("urls", "", "Comma-separated judgment URLs to analyze (default: discover from the site)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper case-analysis [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lawscraper case-analysis -count 20\n")
		fmt.Fprintf(os.Stderr, "  lawscraper case-analysis -urls https://new.kenyalaw.org/judgments/12345\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	var urls []string
	for _, u := range strings.Split(*urlList, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	os.Exit(executePipeline(flags, func(ctx context.Context, s *pipeline.Session) error {
		return s.RunCaseAnalysis(ctx, urls, *count)
	}))
}

// runAll takes separate limits for the judgment and legislation pipelines.
func runAll(args []string) {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	flags := addPipelineFlags(fs)
	count := fs.Int("count", 10, "Maximum judgments per judgment pipeline (0 = all found)")
	acts := fs.Int("acts", 10, "Maximum acts to scrape (0 = all found)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper all [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(executePipeline(flags, func(ctx context.Context, s *pipeline.Session) error {
		return s.RunAll(ctx, *count, *acts)
	}))
}

// executePipeline wires logging, config, signal handling, and a Session
// around one pipeline run and returns the process exit code.
func executePipeline(flags pipelineFlags, run func(context.Context, *pipeline.Session) error) int {
	log := applog.NewLogger(*flags.logLevel, *flags.jsonLogs)
	cfg := loadAndValidateConfig(*flags.configFile, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded, forcing exit")
			os.Exit(1)
		}
	}()

	session, err := pipeline.NewSession(cfg, log, *flags.resume)
	if err != nil {
		log.Errorf("Initialization failed: %v", err)
		return 1
	}
	defer session.Close()

	if err := run(ctx, session); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Run cancelled gracefully")
			return 0
		}
		log.Errorf("Run finished with error: %v", err)
		return 1
	}

	log.Info("Run completed successfully")
	return 0
}

// watchPipelines are the pipelines the watch scheduler can run, in run order.
var watchPipelines = []string{"case-extraction", "legislation", "case-analysis"}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	intervalStr := fs.String("interval", "24h", "Re-scrape interval (e.g. 30m, 12h, 7d)")
	pipelinesStr := fs.String("pipelines", "", "Comma-separated pipelines to watch (default: all)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	jsonLogs := fs.Bool("json-logs", false, "Emit logs as JSON")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper watch [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lawscraper watch -interval 24h\n")
		fmt.Fprintf(os.Stderr, "  lawscraper watch -pipelines legislation -interval 7d\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := applog.NewLogger(*logLevel, *jsonLogs)

	interval, err := watch.ParseInterval(*intervalStr)
	if err != nil {
		log.Fatalf("Invalid interval: %v", err)
	}

	names := watchPipelines
	if *pipelinesStr != "" {
		names = nil
		for _, p := range strings.Split(*pipelinesStr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !slices.Contains(watchPipelines, p) {
				log.Fatalf("Unknown pipeline %q (choose from %s)", p, strings.Join(watchPipelines, ", "))
			}
			names = append(names, p)
		}
		if len(names) == 0 {
			log.Fatal("No pipelines selected")
		}
	}

	cfg := loadAndValidateConfig(*configFile, log)

	// Each scheduled run gets a fresh session in resume mode, so documents
	// captured by earlier cycles are skipped.
	run := func(ctx context.Context, name string) error {
		session, err := pipeline.NewSession(cfg, log, true)
		if err != nil {
			return err
		}
		defer session.Close()
		return runPipelineByName(ctx, session, name)
	}

	scheduler := watch.NewScheduler(cfg.StateDir, names, interval, run, log.WithField("component", "watch"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, stopping watch...", sig)
		scheduler.Stop()
	}()

	if err := scheduler.Run(); err != nil {
		log.Fatalf("Watch scheduler error: %v", err)
	}
	log.Info("Watch mode stopped")
}

// runPipelineByName dispatches a watch pipeline name to its Session method.
func runPipelineByName(ctx context.Context, s *pipeline.Session, name string) error {
	switch name {
	case "case-extraction":
		return s.RunCaseExtraction(ctx, 0)
	case "legislation":
		return s.RunLegislation(ctx, 0)
	case "case-analysis":
		return s.RunCaseAnalysis(ctx, nil, 0)
	}
	return fmt.Errorf("unknown pipeline %q", name)
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	query := fs.String("query", "", "Search query (required)")
	docType := fs.String("type", "", "Restrict to one document type (case_law, legislation, case_analysis)")
	size := fs.Int("size", 10, "Maximum number of hits")
	logLevel := fs.String("loglevel", "warn", "Log level")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper search -query <text> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *query == "" {
		fmt.Fprintln(os.Stderr, "Error: -query is required")
		fs.Usage()
		os.Exit(1)
	}

	log := applog.NewLogger(*logLevel, false)
	cfg := loadAndValidateConfig(*configFile, log)

	client, err := search.NewClient(cfg.Elasticsearch, log)
	if err != nil {
		log.Fatalf("Search client error: %v", err)
	}
	if !client.Enabled() {
		log.Fatal("Elasticsearch is not configured; set elasticsearch.addresses in the config")
	}

	hits, err := client.Search(context.Background(), *query, *docType, *size)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	os.Exit(printHits(os.Stdout, hits))
}

func printHits(w io.Writer, hits []search.Hit) int {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results.")
		return 0
	}
	for _, hit := range hits {
		line, err := json.Marshal(hit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(w, string(line))
	}
	return 0
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lawscraper validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to the provided writers.
// Returns the exit code (0 = valid, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Configuration valid.")
	return 0
}

// loadAndValidateConfig loads the config file, validates it, and logs
// warnings. Fatal on load or validation errors.
func loadAndValidateConfig(configFile string, log *logrus.Logger) *config.AppConfig {
	log.Infof("Loading configuration from %s", configFile)
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Config validation error: %v", err)
	}

	return cfg
}
