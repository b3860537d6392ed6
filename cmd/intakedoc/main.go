package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "intakedoc",
	Short:         "Convert scanned documents to markdown via OCR",
	Long:          "intakedoc submits PDF and image files to a remote OCR service and renders the extracted elements as deterministic markdown.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Printf("intakedoc: %v", err)
		os.Exit(1)
	}
}
