package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/domain"

	"github.com/jung-kurt/gofpdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists what Render accepts.
var Formats = []string{"json", "csv", "pdf"}

type row struct {
	domain.Task
	Remaining string `json:"remaining"`
}

// Exporter renders the task list with the remaining time as of now.
type Exporter struct {
	Now      func() time.Time
	Location *time.Location
}

func New(loc *time.Location) *Exporter {
	return &Exporter{Now: time.Now, Location: loc}
}

// ContentType is the MIME type for format, "" when unknown.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "pdf":
		return "application/pdf"
	}
	return ""
}

func (e *Exporter) rows(tasks []domain.Task) []row {
	now := e.Now()
	out := make([]row, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, row{Task: t, Remaining: countdown.LabelFor(t, now, e.Location).String()})
	}
	return out
}

func (e *Exporter) Render(tasks []domain.Task, format string) ([]byte, error) {
	rows := e.rows(tasks)
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(rows, "", "  ")
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "text", "completed", "deadline", "remaining"})
		for _, r := range rows {
			_ = w.Write([]string{r.ID, r.Text, fmt.Sprint(r.Completed), r.Deadline, r.Remaining})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		return e.pdf(rows)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (e *Exporter) pdf(rows []row) ([]byte, error) {
	done := 0
	for _, r := range rows {
		if r.Completed {
			done++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d of %d completed, %s", done, len(rows), e.Now().In(e.loc()).Format("2006-01-02 15:04")))
	pdf.Ln(10)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, r := range rows {
		mark := "[ ]"
		if r.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  due %s  (%s)", mark, r.Text, r.Deadline, r.Remaining)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) loc() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}
