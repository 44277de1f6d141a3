package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gazette/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "gazette",
	Short: "Gazette - extract publication text from gazette PDFs",
	Long: `Gazette reads the publication text of legal-entity gazette PDFs.

Text is taken from the region of interest of every page, skipping the title
block of the first page and the running header of the others. PDFs with an
embedded text layer are read directly; scans are sent to an OCR backend
(Google Document AI, Google Cloud Vision, or a local Tesseract build).`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("Gazette CLI executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("no-ocr", false, "Never send scans to OCR (overrides OCR_ENABLED)")
	rootCmd.PersistentFlags().String("backend", "", "OCR backend: documentai, vision or tesseract (overrides OCR_BACKEND)")
}
