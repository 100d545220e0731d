package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// Extractor reads the text layer of a PDF page by page. Scanned pages
// without a text layer yield no lines.
type Extractor struct {
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewExtractor(storage ports.ObjectStorage, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{storage: storage, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, path string) (text domain.ExtractedText, err error) {
	reader, err := e.storage.Open(ctx, path)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "open pdf", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "read pdf", err)
	}

	// The pdf package panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text = domain.ExtractedText{}
			err = domain.WrapError(domain.ErrInputAccess, "parse pdf", fmt.Errorf("%s: %v", path, r))
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "parse pdf", err)
	}

	numPages := doc.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractedText{}, err
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.Join(pageLines(page.Content().Text), "\n"))
	}

	lines := domain.LinesFromPages(pages)
	e.logger.Debug("pdf text extracted", "path", path, "pages", numPages, "lines", len(lines))
	return domain.ExtractedText{Path: path, Pages: numPages, Lines: lines}, nil
}

// pageLines rebuilds visual lines from positioned glyphs: rows top to bottom,
// glyphs left to right. Line moves inside one text object (Td, TD, Tm) only
// show up as a change of Y, so the text operators alone cannot be trusted.
func pageLines(glyphs []pdf.Text) []string {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	lines := make([]string, 0)
	row := sorted[:1]
	for _, g := range sorted[1:] {
		if row[0].Y-g.Y <= rowTolerance(row[0]) {
			row = append(row, g)
			continue
		}
		lines = append(lines, rowText(row))
		row = []pdf.Text{g}
	}
	return append(lines, rowText(row))
}

func rowTolerance(g pdf.Text) float64 {
	return max(g.FontSize*0.4, 1)
}

func rowText(row []pdf.Text) string {
	glyphs := make([]pdf.Text, len(row))
	copy(glyphs, row)
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > max(prev.FontSize*0.2, 0.5) && !strings.HasSuffix(b.String(), " ") && g.S != " " {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return b.String()
}
