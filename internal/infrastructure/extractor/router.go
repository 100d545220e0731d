package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// Router picks a text extractor by file extension.
type Router struct {
	byExt map[string]ports.TextExtractor
}

func NewRouter(pdf, workbook, text ports.TextExtractor) *Router {
	byExt := make(map[string]ports.TextExtractor)
	if pdf != nil {
		byExt[".pdf"] = pdf
	}
	if workbook != nil {
		byExt[".xlsx"] = workbook
	}
	if text != nil {
		byExt[".txt"] = text
	}
	return &Router{byExt: byExt}
}

func (r *Router) Extract(ctx context.Context, path string) (domain.ExtractedText, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInvalidInput, "select extractor", fmt.Errorf("unsupported format %q: %s", ext, path))
	}
	return e.Extract(ctx, path)
}
