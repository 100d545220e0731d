package xlsxtext

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// Extractor flattens a workbook into lines: one line per row, non-empty cells
// joined by a single space, sheets in workbook order. Each sheet counts as a page.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, path string) (domain.ExtractedText, error) {
	reader, err := e.storage.Open(ctx, path)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "open workbook", err)
	}
	defer reader.Close()

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "parse workbook", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	pages := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, fmt.Sprintf("read sheet %q", sheet), err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if v := strings.TrimSpace(cell); v != "" {
					cells = append(cells, v)
				}
			}
			lines = append(lines, strings.Join(cells, " "))
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return domain.ExtractedText{
		Path:  path,
		Pages: len(sheets),
		Lines: domain.LinesFromPages(pages),
	}, nil
}
