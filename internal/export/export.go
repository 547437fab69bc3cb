// Package export renders the record tree (live or archived) into the
// downloadable spreadsheet and document files.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bookdist/pkg/domain"
)

// Format identifies an export file type.
type Format string

const (
	// FormatXLS is the SpreadsheetML 2003 workbook opened by Excel as .xls.
	FormatXLS Format = "xls"
	// FormatDOC is the Word-compatible HTML report saved as .doc.
	FormatDOC Format = "doc"
	// FormatXLSX is the Office Open XML workbook.
	FormatXLSX Format = "xlsx"
)

// DefaultFormats are produced by an export action when none are requested.
func DefaultFormats() []Format { return []Format{FormatXLS, FormatDOC} }

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatXLS, FormatDOC, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Artifact describes one rendered export file.
type Artifact struct {
	Format      Format         `json:"format"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Renderer turns a record tree into export payloads. Dates are shown in Location.
type Renderer struct {
	Location *time.Location
}

// NewRenderer returns a Renderer using loc (UTC when nil).
func NewRenderer(loc *time.Location) Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return Renderer{Location: loc}
}

func (r Renderer) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Render produces one export file. ref is the archive timestamp for snapshot
// exports and nil for the current data.
func (r Renderer) Render(format Format, schools []domain.School, ref *time.Time) (Artifact, []byte, error) {
	name, err := r.FileName(format, ref)
	if err != nil {
		return Artifact{}, nil, err
	}
	switch format {
	case FormatXLS:
		rows := TabularRows(schools)
		payload := buildSpreadsheetML(rows)
		return Artifact{
			Format:      FormatXLS,
			FileName:    name,
			ContentType: "application/vnd.ms-excel;charset=utf-8",
			SizeBytes:   int64(len(payload)),
			Metadata:    map[string]any{"rows": len(rows)},
		}, payload, nil
	case FormatXLSX:
		rows := TabularRows(schools)
		payload, err := buildXLSX(rows)
		if err != nil {
			return Artifact{}, nil, fmt.Errorf("build xlsx: %w", err)
		}
		return Artifact{
			Format:      FormatXLSX,
			FileName:    name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			SizeBytes:   int64(len(payload)),
			Metadata:    map[string]any{"rows": len(rows)},
		}, payload, nil
	case FormatDOC:
		var when *time.Time
		if ref != nil {
			t := ref.In(r.location())
			when = &t
		}
		payload, subjects := buildWordHTML(schools, when)
		return Artifact{
			Format:      FormatDOC,
			FileName:    name,
			ContentType: "application/msword;charset=utf-8",
			SizeBytes:   int64(len(payload)),
			Metadata:    map[string]any{"subjects": subjects},
		}, payload, nil
	default:
		return Artifact{}, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FileName returns the download name for format. Current-data exports use a
// fixed name; snapshot exports embed the archive date as D-M-YYYY.
func (r Renderer) FileName(format Format, ref *time.Time) (string, error) {
	var stem string
	switch format {
	case FormatXLS, FormatXLSX:
		stem = "بيانات_الكتب_"
		if ref == nil {
			stem += "الحالية"
		}
	case FormatDOC:
		stem = "تقرير_الكتب_"
		if ref == nil {
			stem += "الحالي"
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if ref != nil {
		t := ref.In(r.location())
		stem += fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
	}
	return stem + "." + string(format), nil
}
