package plaintext

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// Extractor reads already-extracted text dumps; form feeds separate pages.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, path string) (domain.ExtractedText, error) {
	reader, err := e.storage.Open(ctx, path)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "open source document", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInputAccess, "read source document", err)
	}

	if !utf8.Valid(raw) {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInvalidInput, "read source document", errors.New("not utf-8 text: "+path))
	}

	pages := strings.Split(string(raw), "\f")
	return domain.ExtractedText{
		Path:  path,
		Pages: len(pages),
		Lines: domain.LinesFromPages(pages),
	}, nil
}
