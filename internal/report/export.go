package report

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// Document is a rendered export.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders one district's filing for one day as a PDF.
func (s *Service) Export(ctx context.Context, sess auth.Session, district, date string) (Document, error) {
	if err := admin(sess); err != nil {
		return Document{}, err
	}
	day, err := civil.ParseDate(date)
	if err != nil {
		return Document{}, apperr.ErrBadDate
	}
	rows, err := s.entries.ByDateAndDistrict(ctx, day, district)
	if err != nil {
		return Document{}, fmt.Errorf("export %s %s: %w", district, date, err)
	}
	if len(rows) == 0 {
		return Document{}, ErrNoData
	}

	body, err := renderPDF(s.forms, district, date, rows)
	if err != nil {
		return Document{}, fmt.Errorf("render export: %w", err)
	}
	metrics.ExportTotal.Inc()
	zap.L().Info("dsr exported",
		zap.String("district", district),
		zap.String("date", date),
		zap.Int("entries", len(rows)),
		zap.Int("bytes", len(body)))

	return Document{
		Filename:    fmt.Sprintf("DSR_%s_%s.pdf", district, date),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

// Page geometry in millimetres.
const (
	labelW = 80.0
	valueW = 110.0
	rowH   = 6.0
)

func renderPDF(forms *form.Registry, district, date string, rows []store.Entry) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetTitle(fmt.Sprintf("DSR %s %s", district, date), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr("Daily Status Report - "+district), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr("Date: "+date), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, e := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(0x36, 0x60, 0x92)
		pdf.SetTextColor(0xff, 0xff, 0xff)
		pdf.CellFormat(labelW+valueW, 7, tr(forms.FormName(e.FormType)), "1", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)

		for _, c := range cells(forms, e) {
			if c.heading {
				pdf.SetFont("Arial", "BI", 10)
				pdf.CellFormat(labelW+valueW, rowH, tr(c.label), "1", 1, "L", false, 0, "")
				continue
			}
			pairRow(pdf, tr(c.label), tr(c.value))
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cell is one row of an entry's table in the export.
type cell struct {
	label, value string
	heading      bool
}

// cells lays out e in catalog field order.  Entries whose form key has
// left the catalog list their stored keys alphabetically.
func cells(forms *form.Registry, e store.Entry) []cell {
	fd, ok := forms.Form(e.FormType)
	if !ok {
		out := make([]cell, 0, len(e.Data))
		for _, k := range slices.Sorted(maps.Keys(e.Data)) {
			out = append(out, cell{label: k, value: e.Data[k]})
		}
		return out
	}
	out := make([]cell, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		switch {
		case !f.Layout():
			out = append(out, cell{label: f.Label, value: e.Data[f.Name]})
		case f.Label != "":
			out = append(out, cell{label: f.Label, heading: true})
		}
	}
	return out
}

// pairRow writes one bordered label/value row.  Long values wrap.
func pairRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 10)
	x, y := pdf.GetXY()
	lines := max(len(pdf.SplitLines([]byte(value), valueW-2)), len(pdf.SplitLines([]byte(label), labelW-2)), 1)
	h := float64(lines) * rowH

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if y+h > pageH-bottom {
		pdf.AddPage()
		x, y = pdf.GetXY()
	}

	pdf.Rect(x, y, labelW, h, "D")
	pdf.Rect(x+labelW, y, valueW, h, "D")
	pdf.MultiCell(labelW, rowH, label, "", "L", false)
	pdf.SetXY(x+labelW, y)
	pdf.MultiCell(valueW, rowH, value, "", "L", false)
	pdf.SetXY(x, y+h)
}
