// package formatter renders watchlists to export formats (CSV, Markdown, plain text, JSON) and decodes QR data URLs.
package formatter

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// QRFilename is the image written next to a Markdown export.
const QRFilename = "qr.png"

// ExportToCSV converts a watchlist to CSV with columns: ID, Title, Year, Runtime, Rating, Genres, TMDB ID
func ExportToCSV(w *models.WatchlistDetail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Runtime", "Rating", "Genres", "TMDB ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range w.Movies {
		year := ""
		if y := m.Year(); y > 0 {
			year = strconv.Itoa(y)
		}
		external := ""
		if m.ExternalID > 0 {
			external = strconv.FormatInt(m.ExternalID, 10)
		}
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.Title,
			year,
			strconv.Itoa(m.Runtime),
			strconv.FormatFloat(m.Rating, 'f', 1, 64),
			strings.Join(m.Genres, "|"),
			external,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a watchlist to Markdown, embedding qrFilename when set.
func ExportToMarkdown(w *models.WatchlistDetail, qrFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", w.Name)

	if qrFilename != "" {
		fmt.Fprintf(&buf, "![QR code](%s)\n\n", qrFilename)
	}

	if w.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", w.Description)
	}
	if w.Username != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", w.Username)
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(w.Movies))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", shared.VisibilityString(w.IsPublic))

	buf.WriteString("## Movies\n\n")
	for i, m := range w.Movies {
		genres := ""
		if len(m.Genres) > 0 {
			genres = fmt.Sprintf(" _%s_", strings.Join(m.Genres, ", "))
		}
		fmt.Fprintf(&buf, "%d. %s [%s] ★ %.1f%s\n", i+1, m.Label(), shared.FormatRuntime(m.Runtime), m.Rating, genres)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a watchlist to plain text.
func ExportToText(w *models.WatchlistDetail) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", w.Name)
	if w.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", w.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(w.Movies))

	for i, m := range w.Movies {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, m.Label())
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON renders the watchlist without its movies.
func ToMetadataJSON(w *models.WatchlistDetail) ([]byte, error) {
	meta := models.Watchlist{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		IsPublic:    w.IsPublic,
		MovieCount:  len(w.Movies),
		CreatedAt:   w.CreatedAt,
	}
	return shared.MarshalJSON(meta, true)
}

// DecodeDataURL splits a base64 data URL ("data:image/png;base64,...") into its media type and bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URL", shared.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URL has no payload", shared.ErrInvalidInput)
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 data URLs are supported", shared.ErrInvalidInput)
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return mediaType, data, nil
}

// WriteQRCode decodes dataURL and writes the image to path.
func WriteQRCode(dataURL, path string) error {
	if dataURL == "" {
		return shared.ErrQRCodeUnavailable
	}
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_movies.csv and {base}_metadata.json.
//
// base defaults to "watchlist_{id}".
func WriteCSVExport(w *models.WatchlistDetail, base string) (*CSVExportResult, error) {
	if base == "" {
		base = DefaultBasename(w)
	}

	csvData, err := ExportToCSV(w)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := base + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(w)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{MoviesFile: moviesFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	QRCode    string
}

// WriteMarkdownExport writes {dir}/README.md and, when qrDataURL decodes, {dir}/qr.png.
//
// A QR code that fails to decode is skipped; the README is still written.
func WriteMarkdownExport(w *models.WatchlistDetail, outputDir, qrDataURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = DefaultBasename(w)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var qrFilename string
	if qrDataURL != "" {
		qrPath := filepath.Join(outputDir, QRFilename)
		if err := WriteQRCode(qrDataURL, qrPath); err == nil {
			qrFilename = QRFilename
			result.QRCode = qrPath
			result.Files = append(result.Files, qrPath)
		}
	}

	mdData, err := ExportToMarkdown(w, qrFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the plain text export, defaulting to watchlist_{id}.txt.
func WriteTextExport(w *models.WatchlistDetail, path string) (string, error) {
	if path == "" {
		path = DefaultBasename(w) + ".txt"
	}

	textData, err := ExportToText(w)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full watchlist as indented JSON, defaulting to watchlist_{id}.json.
func WriteJSONExport(w *models.WatchlistDetail, path string) (string, error) {
	if path == "" {
		path = DefaultBasename(w) + ".json"
	}
	data, err := shared.MarshalJSON(w, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// DefaultBasename is "watchlist_{id}".
func DefaultBasename(w *models.WatchlistDetail) string {
	return fmt.Sprintf("watchlist_%d", w.ID)
}
