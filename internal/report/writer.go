// Package report exports a scan result as JSON or CSV and prints the
// console summary.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/scan"
)

// Writer exports one scan result to a destination
type Writer interface {
	Write(w io.Writer, result *scan.ScanResult) error
}

// Export writes the result to path using the writer picked for format.
// A path ending in .gz is gzip-compressed transparently.
func Export(path, format string, result *scan.ScanResult) error {
	writer, err := ForFormat(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &models.ScanError{Type: models.ErrExport, Subject: path, Err: err}
	}
	defer f.Close()

	var out io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		out = gz
	}

	if err := writer.Write(out, result); err != nil {
		return &models.ScanError{Type: models.ErrExport, Subject: path, Err: err}
	}
	return nil
}

// ForFormat returns the writer for a format name
func ForFormat(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	default:
		return nil, &models.ScanError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unknown export format %q", format),
		}
	}
}
