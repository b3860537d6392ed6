package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"intakedoc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("output dir:       %s\n", cfg.App.OutputDir)
	fmt.Printf("output backend:   %s\n", cfg.App.OutputBackend)
	fmt.Printf("concurrency:      %d\n", cfg.App.Concurrency)
	fmt.Printf("file timeout:     %ds\n", cfg.App.FileTimeoutSecs)
	fmt.Printf("ocr model:        %s\n", cfg.OCR.Model)
	fmt.Printf("ocr api key:      %s\n", maskKey(cfg.OCR.APIKey))
	fmt.Printf("ocr max attempts: %d\n", cfg.OCR.MaxAttempts)
	fmt.Printf("ordered lists:    %t\n", cfg.Render.OrderedLists)
	fmt.Printf("cache backend:    %s\n", cfg.Cache.Backend)
	if cfg.Cache.Backend == "file" {
		fmt.Printf("cache path:       %s\n", cfg.Cache.Path)
	}
	if cfg.App.OutputBackend == "s3" {
		fmt.Printf("s3 bucket:        %s\n", cfg.S3.Bucket)
		fmt.Printf("s3 prefix:        %s\n", cfg.S3.Prefix)
	}
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
