// Package main is the marketscan CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/backfill"
	"github.com/hyperjump/marketscan/internal/cli"
	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/export"
	"github.com/hyperjump/marketscan/internal/intake"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/search"
	"github.com/hyperjump/marketscan/internal/server"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/internal/workflow"
	"github.com/hyperjump/marketscan/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/marketscan/config.yaml"

// loadConfig loads .env from the working directory, then the config at path. When path
// is the default and ./config.yaml exists, that file is used instead (for development).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadEnv(".env"); err != nil {
		return nil, "", err
	}
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// app is the per-command runtime: config, logger and initialized components.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	components *Components
}

func setup(configPath string, debug bool) *app {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return &app{cfg: cfg, configPath: resolved, logger: logger, components: components}
}

func (a *app) close() {
	if err := a.components.Close(); err != nil {
		a.logger.Error("failed to close components", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "scan":
		runScan()
	case "similar":
		runSimilar()
	case "list":
		runList()
	case "search":
		runSearch()
	case "backfill":
		runBackfill()
	case "stats":
		runStats()
	case "purge":
		runPurge()
	case "export":
		runExport()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("marketscan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watch := fs.Bool("watch", true, "scan posting files dropped into the configured intake directories")
	_ = fs.Parse(os.Args[2:])

	a := setup(*configPath, *debug)
	defer a.close()

	ctx, stop := signalContext()
	defer stop()

	if *watch && len(a.cfg.Intake.Directories) > 0 {
		in := intake.New(a.cfg.Intake, a.components.Workflow, a.logger)
		go func() {
			if err := in.Run(ctx); err != nil {
				a.logger.Error("intake stopped", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(a.components.Workflow, a.components.Matching, &a.cfg.Server, a.logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins positional args with spaces so multi-word text works with or without quotes.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func outputFlag(fs *flag.FlagSet) *string {
	return fs.String("output", "text", "output format: text, compact, or json")
}

func parseOutput(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fatalf("%v", err)
	}
	return format
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	file := fs.String("file", "", "job posting file (.txt, .md, .pdf, .docx, .xlsx, .rtf, .odt)")
	title := fs.String("title", "", "job title")
	client := fs.String("client", "", "client name")
	email := fs.String("email", "", "client email")
	domain := fs.String("domain", "", "company domain")
	challenges := fs.String("challenges", "", "hiring challenges")
	outputFormat := outputFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: marketscan scan [flags] --title <title> <description>\n       marketscan scan [flags] --file <posting>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*outputFormat)

	a := setup(*configPath, false)
	defer a.close()
	ctx := context.Background()

	var (
		res *workflow.Result
		err error
	)
	if *file != "" {
		in := intake.New(a.cfg.Intake, a.components.Workflow, a.logger)
		res, err = in.ProcessFile(ctx, *file)
	} else {
		req := models.MarketScanRequest{
			ClientName:       *client,
			ClientEmail:      *email,
			CompanyDomain:    *domain,
			JobTitle:         *title,
			JobDescription:   joinArgs(fs.Args()),
			HiringChallenges: *challenges,
		}
		if req.ClientName == "" {
			req.ClientName = a.cfg.Intake.ClientName
		}
		if req.ClientEmail == "" {
			req.ClientEmail = a.cfg.Intake.ClientEmail
		}
		if req.CompanyDomain == "" {
			req.CompanyDomain = a.cfg.Intake.CompanyDomain
		}
		res, err = a.components.Workflow.CreateScan(ctx, req)
	}
	if res != nil && res.Scan != nil {
		if werr := cli.WriteScan(os.Stdout, res.Scan, res.Similar, format); werr != nil {
			fatalf("Output failed: %v", werr)
		}
	}
	if err != nil {
		fatalf("Scan failed: %v", err)
	}
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	scanID := fs.String("scan", "", "find neighbors of a stored scan by id")
	title := fs.String("title", "", "job title of an ad-hoc posting")
	threshold := fs.Float64("threshold", workflow.DefaultThreshold, "minimum similarity in [0,1] (default from config)")
	limit := fs.Int("limit", 0, "maximum matches (default from config)")
	role := fs.String("role", "", "only match scans of this role category")
	outputFormat := outputFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: marketscan similar [flags] --scan <id>\n       marketscan similar [flags] --title <title> <description>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*outputFormat)
	description := joinArgs(fs.Args())
	if *scanID == "" && *title == "" && description == "" {
		fs.Usage()
		os.Exit(1)
	}
	if isFlagSet(fs, "threshold") && (*threshold < 0 || *threshold > 1) {
		fatalf("threshold must be between 0 and 1")
	}

	a := setup(*configPath, false)
	defer a.close()
	ctx := context.Background()

	var (
		matches    []models.SimilarityMatch
		confidence float64
	)
	if *scanID != "" {
		var err error
		matches, confidence, err = a.components.Workflow.Similar(ctx, *scanID, *threshold, *limit)
		if err != nil {
			fatalf("Similar failed: %v", err)
		}
	} else {
		matches, confidence = a.components.Workflow.SimilarToPosting(ctx,
			models.JobPosting{Title: *title, Description: description},
			matching.FindOptions{Threshold: *threshold, MaxResults: *limit, Criteria: matching.Criteria{RoleCategory: *role}})
	}
	if err := cli.WriteMatches(os.Stdout, matches, confidence, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	status := fs.String("status", "", "only scans with this status (pending, analyzing, completed, failed)")
	limit := fs.Int("limit", storage.DefaultListLimit, "number of scans")
	offset := fs.Int("offset", 0, "number of scans to skip")
	outputFormat := outputFlag(fs)
	_ = fs.Parse(os.Args[2:])
	format := parseOutput(*outputFormat)

	a := setup(*configPath, false)
	defer a.close()

	scans, err := a.components.Workflow.ListScans(context.Background(), storage.ListOptions{
		Offset: *offset,
		Limit:  *limit,
		Status: models.ScanStatus(*status),
	})
	if err != nil {
		fatalf("List failed: %v", err)
	}
	if err := cli.WriteScanList(os.Stdout, scans, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	offset := fs.Int("offset", 0, "number of results to skip")
	mode := fs.String("mode", "hybrid", "search mode: hybrid, keyword, or semantic")
	fuzzy := fs.Bool("fuzzy", false, "enable typo-tolerant keyword matching")
	minScore := fs.Float64("min-score", 0, "minimum fused score in [0,1]")
	role := fs.String("role", "", "only scans of this role category")
	outputFormat := outputFlag(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: marketscan search [flags] <query>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*outputFormat)
	text := joinArgs(fs.Args())
	if text == "" {
		fs.Usage()
		os.Exit(1)
	}

	query := &search.Query{Text: text, Limit: *limit, Offset: *offset, Fuzzy: *fuzzy, MinScore: *minScore}
	switch *mode {
	case "hybrid":
	case "keyword":
		query.KeywordEnabled = true
	case "semantic":
		query.SemanticEnabled = true
	default:
		fatalf("unknown mode %q (use hybrid, keyword, or semantic)", *mode)
	}
	if *role != "" {
		rc, ok := models.ParseRoleCategory(*role)
		if !ok {
			fatalf("unknown role category %q", *role)
		}
		query.RoleCategory = rc
	}

	a := setup(*configPath, false)
	defer a.close()

	resp, err := a.components.Workflow.Search(context.Background(), query)
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runBackfill() {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	batchSize := fs.Int("batch", backfill.DefaultBatchSize, "scans per embedding batch")
	concurrency := fs.Int("concurrency", backfill.DefaultConcurrency, "batches in flight")
	quiet := fs.Bool("quiet", false, "disable the progress bar")
	_ = fs.Parse(os.Args[2:])

	a := setup(*configPath, false)
	defer a.close()
	ctx, stop := signalContext()
	defer stop()

	opts := backfill.Options{BatchSize: *batchSize, Concurrency: *concurrency, Logger: a.logger}
	if !*quiet {
		opts.Progress = newProgress(os.Stderr, "Indexing scans")
	}
	report, err := backfill.Run(ctx, a.components.Storage, a.components.Matching.Store(), opts)
	if err != nil {
		fatalf("Backfill failed: %v", err)
	}
	fmt.Printf("scanned: %d  indexed: %d  skipped: %d  failed: %d\n",
		report.Scanned, report.Indexed, report.Skipped, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// newProgress returns a backfill progress callback drawing a bar once the total is known.
func newProgress(w io.Writer, description string) func(done, total int) {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set(done)
	}
}

// statsResponse is the output of the stats command.
type statsResponse struct {
	Scans          int64               `json:"scans"`
	IndexedScans   int                 `json:"indexed_scans"`
	Dimension      int                 `json:"dimension"`
	KeywordDocs    uint64              `json:"keyword_docs"`
	StorageDriver  string              `json:"storage_driver"`
	VectorIndex    string              `json:"vector_index_type"`
	Embedding      string              `json:"embedding_provider"`
	DiskUsageBytes int64               `json:"disk_usage_bytes"`
	Paths          []storage.PathUsage `json:"paths,omitempty"`
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	a := setup(*configPath, false)
	defer a.close()
	ctx := context.Background()

	count, err := a.components.Storage.CountScans(ctx)
	if err != nil {
		fatalf("Count scans failed: %v", err)
	}
	idx, err := a.components.Matching.Stats(ctx)
	if err != nil {
		fatalf("Index stats failed: %v", err)
	}
	docs, err := a.components.KeywordIndex.DocCount()
	if err != nil {
		fatalf("Keyword index stats failed: %v", err)
	}
	status := statsResponse{
		Scans:         count,
		IndexedScans:  idx.TotalVectorCount,
		Dimension:     idx.Dimension,
		KeywordDocs:   docs,
		StorageDriver: a.cfg.Storage.Driver,
		VectorIndex:   a.components.VectorIndex.Type(),
		Embedding:     a.cfg.Embedding.Provider,
	}
	if usage, total, err := storage.MeasurePaths(dataPaths(a.cfg)); err == nil {
		status.Paths = usage
		status.DiskUsageBytes = total
	} else {
		a.logger.Warn("disk usage unavailable", zap.Error(err))
	}

	switch *outputFormat {
	case "json":
		if err := cli.WriteJSON(os.Stdout, status); err != nil {
			fatalf("Output failed: %v", err)
		}
	case "text":
		fmt.Printf("scans:              %d   # stored market scans\n", status.Scans)
		fmt.Printf("indexed_scans:      %d   # vectors in the similarity index\n", status.IndexedScans)
		fmt.Printf("keyword_docs:       %d   # documents in the keyword index\n", status.KeywordDocs)
		fmt.Printf("disk_usage:         %s\n", cli.HumanBytes(status.DiskUsageBytes))
		fmt.Println()
		fmt.Println("# configuration")
		fmt.Printf("storage_driver:     %s\n", status.StorageDriver)
		fmt.Printf("vector_index_type:  %s\n", status.VectorIndex)
		fmt.Printf("embedding:          %s (%d dims)\n", status.Embedding, status.Dimension)
		for _, p := range status.Paths {
			fmt.Printf("%-19s %s (%s)\n", p.Name+":", p.Path, cli.HumanBytes(p.Bytes))
		}
	default:
		fatalf("Unknown output format %q; use text or json", *outputFormat)
	}
}

func runPurge() {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	vectorsOnly := fs.Bool("vectors-only", false, "remove only the similarity index entries, keeping the stored scans")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fmt.Println("Usage: marketscan purge [flags] <scan-id>...")
		os.Exit(1)
	}
	ids := fs.Args()

	a := setup(*configPath, false)
	defer a.close()
	ctx := context.Background()

	if *vectorsOnly {
		if err := a.components.Matching.Purge(ctx, ids...); err != nil {
			fatalf("Purge failed: %v", err)
		}
		fmt.Printf("Purged %d vectors\n", len(ids))
		return
	}
	failed := 0
	for _, id := range ids {
		if err := a.components.Workflow.DeleteScan(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Delete %s failed: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("Scan deleted: %s\n", id)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "", "output file (default: market-scan-<id>.xlsx, or stdout for --csv)")
	csvAll := fs.Bool("csv", false, "export all scans as CSV instead of one scan as xlsx")
	status := fs.String("status", "", "with --csv, only scans with this status")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if !*csvAll && fs.NArg() < 1 {
		fmt.Println("Usage: marketscan export [flags] <scan-id>\n       marketscan export --csv [flags]")
		os.Exit(1)
	}

	a := setup(*configPath, false)
	defer a.close()
	ctx := context.Background()

	if *csvAll {
		scans, err := a.components.Workflow.ListScans(ctx, storage.ListOptions{Limit: 100000, Status: models.ScanStatus(*status)})
		if err != nil {
			fatalf("List failed: %v", err)
		}
		w, closeFn := openOutput(*out)
		defer closeFn()
		if err := export.WriteCSV(w, scans); err != nil {
			fatalf("Export failed: %v", err)
		}
		return
	}

	id := fs.Arg(0)
	scan, err := a.components.Workflow.GetScan(ctx, id)
	if err != nil {
		fatalf("Export failed: %v", err)
	}
	similar, _, err := a.components.Workflow.Similar(ctx, id, workflow.DefaultThreshold, 0)
	if err != nil {
		fatalf("Export failed: %v", err)
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("market-scan-%s.xlsx", id)
	}
	w, closeFn := openOutput(path)
	defer closeFn()
	if err := export.WriteWorkbook(w, scan, similar); err != nil {
		fatalf("Export failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s\n", path)
}

// openOutput opens path for writing, or stdout when path is empty or "-".
func openOutput(path string) (io.Writer, func()) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("Failed to create %s: %v", path, err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close %s: %v\n", path, err)
		}
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	a := setup(*configPath, *debug)
	defer a.close()

	dirs := a.cfg.Intake.Directories
	if fs.NArg() > 0 {
		dirs = nil
		for _, d := range fs.Args() {
			abs, err := filepath.Abs(d)
			if err != nil {
				fatalf("Invalid directory %s: %v", d, err)
			}
			dirs = append(dirs, abs)
		}
	}
	cfg := a.cfg.Intake
	cfg.Directories = dirs

	ctx, stop := signalContext()
	defer stop()
	if err := intake.New(cfg, a.components.Workflow, a.logger).Run(ctx); err != nil {
		fatalf("Watch failed: %v", err)
	}
}

func printUsage() {
	fmt.Println(`marketscan - Market scan analysis with similar-scan enhancement

Usage:
  marketscan server [flags]                    Start the HTTP server (and intake watcher)
  marketscan scan [flags] <description>        Analyze a job posting and store the scan
  marketscan similar [flags] [description]     Find similar historical scans
  marketscan list [flags]                      List stored scans
  marketscan search [flags] <query>            Hybrid keyword and semantic scan search
  marketscan backfill [flags]                  Rebuild the similarity index from stored scans
  marketscan stats [flags]                     Show storage and index statistics
  marketscan purge [flags] <scan-id>...        Delete scans (or only their vectors)
  marketscan export [flags] <scan-id>          Export a scan report as xlsx (or all scans as CSV)
  marketscan watch [flags] [dir...]            Scan posting files dropped into directories
  marketscan version                           Show version
  marketscan help                              Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/marketscan/config.yaml)
  --output string    Output format: text, compact, or json (scan, similar, list)

Scan Flags:
  --file string      Job posting file (.txt, .md, .pdf, .docx, .xlsx, .rtf, .odt)
  --title string     Job title
  --client, --email, --domain, --challenges   Client details (defaults from intake config)

Similar Flags:
  --scan string        Stored scan id
  --title string       Ad-hoc posting title
  --threshold float    Minimum similarity (default from config)
  --limit int          Maximum matches (default from config)
  --role string        Restrict to one role category

Search Flags:
  --mode string        hybrid (default), keyword, or semantic
  --fuzzy              Typo-tolerant keyword matching
  --min-score float    Minimum fused score
  --limit, --offset    Paging

Examples:
  marketscan server
  marketscan scan --title "Data Analyst" --client Acme --email ops@acme.com --domain acme.com "Own SQL reporting"
  marketscan scan --file ./postings/retention-manager.docx
  marketscan similar --scan 3f0c9a1e-...
  marketscan similar --title "Community Manager" --threshold 0.8 "Grow our Discord"
  marketscan search --mode keyword --fuzzy "lookr dashboards"
  marketscan backfill --batch 100 --concurrency 8
  marketscan export --csv --status completed --out scans.csv`)
}
