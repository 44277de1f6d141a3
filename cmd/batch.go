package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gazette/internal/config"
	"gazette/internal/extract"
	"gazette/internal/logger"
	"gazette/internal/sheets"
	"gazette/pkg/models"
)

// metaSuffix names the optional publication metadata file next to a PDF:
// 20039943.pdf -> 20039943.meta.json
const metaSuffix = ".meta.json"

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Extract every gazette PDF in a folder",
	Long: `Extract the publication text of all PDFs in a folder, several at a time.

Each PDF may be accompanied by a <name>.meta.json file holding its publication
metadata (vat, publication_id, publication_date, publication_meta, file_url).
Results are written as JSON files to --out-dir, mirroring the portal layout
when a file_url is known, and the publication metadata is stored under
meta/<vat>/<year>/<month>/<day>/<pubid>.json. When GOOGLE_SHEET_URL is set a
summary row per PDF is appended to the worksheet.

Optional environment variables:
  BATCH_WORKERS - Number of documents processed in parallel (default: 8)
  OCR_MAX_CONCURRENT - Number of concurrent OCR calls (default: 4)
  GOOGLE_SHEET_URL - Google Sheets URL to write a summary to
  GOOGLE_SHEET_WORKSHEET - Worksheet name (default: Extractions)`,
	Example: `  # Extract a folder, write JSON results
  gazette batch ./downloads --out-dir ./extracted

  # Digital PDFs only, 16 workers
  gazette batch ./downloads --no-ocr --workers 16 --out-dir ./extracted

  # Process without writing anything
  gazette batch ./downloads --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (overrides BATCH_WORKERS)")
	batchCmd.Flags().String("out-dir", "", "Directory to write JSON results to")
	batchCmd.Flags().String("sheet", "", "Worksheet name (overrides GOOGLE_SHEET_WORKSHEET)")
	batchCmd.Flags().Bool("dry-run", false, "Process files but don't write results or the Google Sheet")
	batchCmd.Flags().Int("timeout", 1800, "Overall timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	folderPath := args[0]
	workers, _ := cmd.Flags().GetInt("workers")
	outDir, _ := cmd.Flags().GetString("out-dir")
	sheetName, _ := cmd.Flags().GetString("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(cmd, config.WithBatchWorkers(workers), config.WithWorksheet(sheetName))
	if err != nil {
		return err
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	log := logger.WithFields(map[string]interface{}{
		"component": "batch",
		"folder":    folderPath,
		"workers":   cfg.BatchWorkers,
	})
	log.Info().
		Bool("ocr", cfg.OCREnabled).
		Str("backend", cfg.OCRBackend).
		Bool("dry_run", dryRun).
		Msg("Starting batch extraction")

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         GAZETTE BATCH EXTRACTION")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Folder: %s\n", folderPath)
	if cfg.OCREnabled {
		fmt.Printf("OCR: %s\n", cfg.OCRBackend)
	} else {
		fmt.Println("OCR: disabled")
	}
	if dryRun {
		fmt.Println("Mode: dry run (nothing is written)")
	}
	fmt.Println()

	pdfFiles, err := findPDFFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to find PDF files: %w", err)
	}
	if len(pdfFiles) == 0 {
		fmt.Println("No PDF files found in folder.")
		return nil
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

	fmt.Printf("Processing %d PDFs with %d parallel workers...\n\n", len(pdfFiles), cfg.BatchWorkers)

	sources := make([]extract.Source, len(pdfFiles))
	for i, p := range pdfFiles {
		sources[i] = extract.FromPath(p)
	}
	results := extractor.ExtractBatch(ctx, sources, cfg.BatchWorkers)

	extractions := make([]models.Extraction, len(results))
	counts := map[string]int{}
	for i, r := range results {
		pub, err := loadPublication(pdfFiles[i])
		if err != nil {
			log.Warn().Err(err).Str("file", pdfFiles[i]).Msg("Ignoring unreadable publication metadata")
		}
		extractions[i] = toExtraction(pdfFiles[i], pub, r)
		counts[extractions[i].Method()]++
		printBatchLine(extractions[i])
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Digital: %d\n", counts["digital"])
	fmt.Printf("OCR: %d\n", counts["ocr"])
	if counts["declined"] > 0 {
		fmt.Printf("Scans without OCR: %d\n", counts["declined"])
	}
	if counts["failed"] > 0 {
		fmt.Printf("Failed: %d\n", counts["failed"])
	}
	fmt.Println()

	if !dryRun && outDir != "" {
		written, err := writeExtractions(outDir, folderPath, extractions, log)
		if err != nil {
			return err
		}
		fmt.Printf("Results written: %d files in %s\n", written, outDir)
	}

	if !dryRun && cfg.GoogleSheetURL != "" {
		fmt.Println("Writing summary to Google Sheet...")

		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}
		if err := sheetsService.WriteExtractions(ctx, extractions, cfg.GoogleSheetWorksheet); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}
		fmt.Printf("Sheet: %s\n", cfg.GoogleSheetWorksheet)
		fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	}

	fmt.Println(strings.Repeat("=", 80))

	log.Info().
		Int("total", len(pdfFiles)).
		Int("digital", counts["digital"]).
		Int("ocr", counts["ocr"]).
		Int("declined", counts["declined"]).
		Int("failed", counts["failed"]).
		Msg("Batch extraction completed")

	return nil
}

// findPDFFiles finds all PDF files in the specified folder
func findPDFFiles(folderPath string) ([]string, error) {
	var pdfFiles []string

	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".pdf") {
			pdfFiles = append(pdfFiles, path)
		}
		return nil
	})

	return pdfFiles, err
}

// loadPublication reads the metadata file next to a PDF. A missing file is
// not an error.
func loadPublication(pdfPath string) (*models.Publication, error) {
	metaPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + metaSuffix
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var pub models.Publication
	if err := json.Unmarshal(data, &pub); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaPath, err)
	}
	return &pub, nil
}

func toExtraction(pdfPath string, pub *models.Publication, r extract.BatchResult) models.Extraction {
	e := models.Extraction{
		Source:       pdfPath,
		Publication:  pub,
		Text:         r.Result.Text,
		IsDigital:    r.Result.IsDigital,
		OCRDeclined:  r.Result.OCRDeclined,
		Pages:        r.Result.Pages,
		SkippedPages: r.Result.SkippedPages,
		DurationMS:   r.Result.Duration.Milliseconds(),
		ExtractedAt:  time.Now().UTC(),
	}
	if r.Err != nil {
		e.Error = explainError(r.Err).Error()
	}
	return e
}

func printBatchLine(e models.Extraction) {
	name := filepath.Base(e.Source)
	switch e.Method() {
	case "failed":
		fmt.Printf("  ✗ %s: %s\n", name, e.Error)
	case "declined":
		fmt.Printf("  - %s: scan, OCR disabled\n", name)
	default:
		fmt.Printf("  ✓ %s: %s, %d pages, %d characters\n", name, e.Method(), e.Pages, len([]rune(e.Text)))
	}
}

// resultPath returns where the JSON result of e is stored: the portal layout
// of the publication file when known, else the PDF path relative to root.
func resultPath(outDir, root string, e models.Extraction) (string, error) {
	if e.Publication != nil && e.Publication.FileURL != "" {
		p, err := models.FilePathFromURL(e.Publication.FileURL)
		if err != nil {
			return "", err
		}
		p = strings.TrimSuffix(p, path.Ext(p)) + ".json"
		return filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(p, "/"))), nil
	}

	rel, err := filepath.Rel(root, e.Source)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(e.Source)
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".json"), nil
}

// writeExtractions stores every result and the publication metadata under
// outDir and returns the number of result files written.
func writeExtractions(outDir, root string, extractions []models.Extraction, log zerolog.Logger) (int, error) {
	written := 0
	for _, e := range extractions {
		target, err := resultPath(outDir, root, e)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Source).Msg("Cannot derive result path")
			continue
		}
		if err := writeJSON(target, e); err != nil {
			return written, err
		}
		written++

		if e.Publication == nil {
			continue
		}
		metaPath, err := e.Publication.MetaPath()
		if err != nil {
			log.Warn().Err(err).Str("file", e.Source).Msg("Cannot derive metadata path")
			continue
		}
		if err := writeJSON(filepath.Join(outDir, "meta", filepath.FromSlash(metaPath)), e.Publication.Meta); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeJSON(target string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
