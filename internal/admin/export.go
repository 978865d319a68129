// Package admin groups the back-office surface: registry browsing, document
// approval, dashboard stats, the audit trail, and registry exports.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"aptic/internal/customer"
	"aptic/internal/document"
)

// Exporter produces XLSX bytes for the customer registry.
type Exporter struct {
	customers *customer.Service
	logger    *slog.Logger
}

func NewExporter(customers *customer.Service, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{customers: customers, logger: logger}
}

// ExportCustomersXLSX returns an XLSX workbook (as bytes) with one row per
// customer in registry order.
func (e *Exporter) ExportCustomersXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	records, err := e.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Customers"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Customer ID",
		"Name",
		"Entity Type",
		"KRA PIN",
		"Status",
		"Joined",
		"Documents",
		"Pending Documents",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		kraPin := ""
		if r.ExtractedData.KRAPin != nil {
			kraPin = *r.ExtractedData.KRAPin
		}
		pending := 0
		for _, d := range r.OriginalDocs {
			if d.Status != document.StatusApproved {
				pending++
			}
		}

		write(1, r.ID)
		write(2, r.DisplayName())
		write(3, r.EntityType.String())
		write(4, kraPin)
		write(5, string(r.Status))
		write(6, r.JoinedAt.Format("2006-01-02"))
		write(7, len(r.OriginalDocs))
		write(8, pending)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 34)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
