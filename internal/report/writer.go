// Package report exports a batch run as CSV, one row per file instance.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"intakedoc/internal/service"
)

// columns defines the CSV header row (9 columns).
var columns = []string{
	"Path",
	"Output",
	"Checksum",
	"File Type",
	"Size Bytes",
	"Stage",
	"Cached",
	"Attempts",
	"Error",
}

// Writer wraps csv.Writer for exporting batch results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReport converts every file result in the report to a CSV row and
// writes them in result order.
func (w *Writer) WriteReport(rep *service.Report) error {
	for i := range rep.Results {
		if err := w.csv.Write(resultToRow(&rep.Results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func resultToRow(res *service.FileResult) []string {
	row := make([]string, len(columns))
	row[0] = res.Instance.Path
	row[1] = res.Location
	row[2] = res.Instance.Checksum
	row[3] = string(res.Instance.FileType)
	row[4] = strconv.FormatInt(res.Instance.Size, 10)
	row[5] = string(res.Stage)
	row[6] = formatBool(res.Cached)
	row[7] = strconv.Itoa(res.Attempts)
	if res.Err != nil {
		row[8] = res.Err.Error()
	}
	return row
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// BuildFilename returns a report filename for a run.
// Format: report_{run_id}_{YYYY-MM-DD}.csv
func BuildFilename(runID string) string {
	return fmt.Sprintf("report_%s_%s.csv", runID, time.Now().Format("2006-01-02"))
}
