package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gazette/internal/extract"
	"gazette/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract the publication text of one gazette PDF",
	Long: `Extract the publication text of a single gazette PDF.

The embedded text layer is read first. When the region of interest holds no
text, the PDF is treated as a scan and sent to the configured OCR backend,
unless OCR is disabled with --no-ocr or OCR_ENABLED=false.

Environment variables for the default Document AI backend:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  GOOGLE_CLOUD_LOCATION - Processor location (default: eu)
  DOCUMENT_AI_PROCESSOR_ID - ID of a Document OCR processor`,
	Example: `  # Extract text to stdout
  gazette extract 20039943.pdf

  # Digital text only, never call OCR
  gazette extract 20039943.pdf --no-ocr

  # Use Cloud Vision and write JSON with metadata
  gazette extract 20039943.pdf --backend vision --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput represents the JSON output structure when --json flag is used
type ExtractOutput struct {
	FileName           string `json:"file_name"`
	FileSize           int64  `json:"file_size"`
	Text               string `json:"text"`
	IsDigital          bool   `json:"is_digital"`
	OCRDeclined        bool   `json:"ocr_declined"`
	Pages              int    `json:"pages"`
	SkippedPages       []int  `json:"skipped_pages,omitempty"`
	ProcessingDuration string `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract-cmd")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", pdfPath).
		Bool("ocr", cfg.OCREnabled).
		Str("backend", cfg.OCRBackend).
		Int("timeout", timeoutSecs).
		Msg("Starting extraction")

	fileInfo, err := validatePDFFile(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	client := newOCRClient(ctx, cfg, log)
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR client")
		}
	}()

	extractor, err := newExtractor(cfg, client)
	if err != nil {
		return err
	}

	result, err := extractor.Extract(ctx, extract.FromPath(pdfPath))
	if err != nil {
		log.Error().Err(err).Str("file", pdfPath).Msg("Extraction failed")
		return explainError(err)
	}

	log.Info().
		Bool("is_digital", result.IsDigital).
		Bool("ocr_declined", result.OCRDeclined).
		Int("pages", result.Pages).
		Dur("duration", result.Duration).
		Int("text_length", len(result.Text)).
		Msg("Extraction completed")

	if result.OCRDeclined {
		fmt.Fprintln(os.Stderr, "No embedded text found and OCR is disabled; the document looks like a scan.")
	}

	return outputResult(result, fileInfo, outputPath, jsonOutput, log)
}

// validatePDFFile checks if the file exists, is readable, and appears to be a PDF
func validatePDFFile(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("PDF file not found")
			return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("Permission denied accessing PDF file")
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", pdfPath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", pdfPath).
			Msg("PDF file is empty")
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling extraction")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// outputResult formats and writes the extraction result
func outputResult(result extract.Result, fileInfo os.FileInfo, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		out := ExtractOutput{
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
			Text:               result.Text,
			IsDigital:          result.IsDigital,
			OCRDeclined:        result.OCRDeclined,
			Pages:              result.Pages,
			SkippedPages:       result.SkippedPages,
			ProcessingDuration: result.Duration.String(),
		}

		var err error
		outputData, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(result.Text)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Extraction result written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(outputData) > 0 {
		fmt.Println()
	}
	return nil
}
