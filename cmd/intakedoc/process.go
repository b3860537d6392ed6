package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"intakedoc/internal/config"
	"intakedoc/internal/domain"
	"intakedoc/internal/ocr/mistral"
	"intakedoc/internal/port"
	"intakedoc/internal/registry"
	"intakedoc/internal/registry/filestore"
	"intakedoc/internal/registry/postgres"
	"intakedoc/internal/render"
	"intakedoc/internal/report"
	"intakedoc/internal/service"
	"intakedoc/internal/writer"
)

var (
	flagOutputDir   string
	flagConcurrency int
	flagReportPath  string
)

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "OCR a file or every supported file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "output directory (overrides INTAKE_APP_OUTPUT_DIR)")
	processCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 0, "max files processed in parallel (overrides INTAKE_APP_CONCURRENCY)")
	processCmd.Flags().StringVar(&flagReportPath, "report", "", "write a CSV batch report to this path")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagOutputDir != "" {
		cfg.App.OutputDir = flagOutputDir
	}
	if flagConcurrency > 0 {
		cfg.App.Concurrency = flagConcurrency
	}

	ctx := cmd.Context()

	fileSvc := service.NewFileService()
	instances, skipped, err := discover(fileSvc, args[0])
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Printf("intakedoc: skipped %d unsupported files", skipped)
	}
	if len(instances) == 0 {
		return fmt.Errorf("no supported files found at %s", args[0])
	}

	store, err := newDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reg := registry.New(store)
	if err := reg.Load(ctx); err != nil {
		return err
	}

	out, err := newOutputWriter(cfg)
	if err != nil {
		return err
	}

	client := mistral.NewClient(&cfg.OCR)
	renderer := render.New(render.Options{OrderedLists: cfg.Render.OrderedLists})

	pipeline := service.NewPipeline(client, reg, renderer, out, service.PipelineConfig{
		MaxAttempts: cfg.OCR.MaxAttempts,
		BackoffBase: time.Duration(cfg.OCR.BackoffBaseSecs) * time.Second,
		BackoffMax:  time.Duration(cfg.OCR.BackoffMaxSecs) * time.Second,
		FileTimeout: time.Duration(cfg.App.FileTimeoutSecs) * time.Second,
	})
	orch := service.NewOrchestrator(pipeline, cfg.App.Concurrency)

	rep := orch.Run(ctx, instances)
	printSummary(rep)

	if flagReportPath != "" {
		if err := writeReport(flagReportPath, rep); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if rep.Fatal != nil {
		return fmt.Errorf("batch aborted: %w", rep.Fatal)
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", rep.Failed, len(instances))
	}
	return nil
}

func discover(fileSvc *service.FileService, path string) ([]*domain.DocumentInstance, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fileSvc.DiscoverDir(path)
	}
	inst, err := fileSvc.Discover(path)
	if err != nil {
		return nil, 0, err
	}
	return []*domain.DocumentInstance{inst}, 0, nil
}

func newDocumentStore(cfg *config.Config) (port.DocumentStore, error) {
	switch cfg.Cache.Backend {
	case "file":
		return filestore.New(cfg.Cache.Path), nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newOutputWriter(cfg *config.Config) (port.OutputWriter, error) {
	switch cfg.App.OutputBackend {
	case "local":
		return writer.NewLocal(cfg.App.OutputDir)
	case "s3":
		return writer.NewS3(&cfg.S3)
	default:
		return nil, fmt.Errorf("unknown output backend %q", cfg.App.OutputBackend)
	}
}

func printSummary(rep *service.Report) {
	fmt.Printf("run %s: %d written, %d skipped, %d failed\n",
		rep.RunID, rep.Written, rep.Skipped, rep.Failed)
	for _, f := range rep.Failures {
		fmt.Printf("  failed %s at %s: %s\n", f.Path, f.Stage, f.Reason)
	}
}

func writeReport(path string, rep *service.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := report.NewWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteReport(rep); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
