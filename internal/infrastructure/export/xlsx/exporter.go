package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ambiclean/apenso/internal/core/domain"
)

const (
	servicesSheet = "Servicos"
	costsSheet    = "Planilha"
)

var serviceHeaders = []string{
	"Serviço",
	"Patrimônio",
	"Marca",
	"BTUs",
	"Local",
	"Descrição",
	"Valor Unitário",
	"Valor (R$)",
	"Conciliado",
}

var costHeaders = []string{
	"Linha",
	"Descrição",
	"Seção",
	"Valor",
}

// Exporter writes the reconciliation of a report as a workbook.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Export returns XLSX bytes with one row per reconciled entry, a total row,
// and a second sheet listing the cost lines as read from the worksheet.
func (e *Exporter) Export(_ context.Context, report *domain.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", servicesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(costsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	writeHeaders(f, servicesSheet, serviceHeaders)
	writeHeaders(f, costsSheet, costHeaders)

	total := decimal.Zero
	row := 2
	for _, entry := range report.Entries {
		write := rowWriter(f, servicesSheet, row)
		write(1, entry.Seq)
		write(2, entry.Item.AssetTag.Display())
		write(3, entry.Item.Brand.Display())
		write(4, entry.Item.CapacityBTU.Display())
		write(5, entry.Item.Location.Display())
		write(6, entry.Description.Display())
		write(7, entry.Amount.Display())

		raw, _ := entry.Amount.Value()
		if amount, ok := domain.ParseBRL(raw); ok && entry.Matched {
			write(8, amount.InexactFloat64())
			total = total.Add(amount)
		}
		write(9, matchedLabel(entry.Matched))
		row++
	}

	write := rowWriter(f, servicesSheet, row)
	write(1, "TOTAL")
	write(7, domain.FormatBRL(total))
	write(8, total.InexactFloat64())

	for i, cost := range report.Costs {
		write := rowWriter(f, costsSheet, i+2)
		write(1, cost.Line)
		write(2, cost.Description.Display())
		write(3, cost.Section)
		write(4, cost.Amount.Display())
	}

	_ = f.SetColWidth(servicesSheet, "A", "A", 10)
	_ = f.SetColWidth(servicesSheet, "B", "D", 14)
	_ = f.SetColWidth(servicesSheet, "E", "F", 40)
	_ = f.SetColWidth(servicesSheet, "G", "I", 16)
	_ = f.SetColWidth(costsSheet, "B", "C", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Debug("summary workbook built",
		"entries", len(report.Entries),
		"cost_items", len(report.Costs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	write := rowWriter(f, sheet, 1)
	for i, h := range headers {
		write(i+1, h)
	}
}

func rowWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func matchedLabel(matched bool) string {
	if matched {
		return "Sim"
	}
	return "Não"
}
