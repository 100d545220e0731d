// Package vocabulary reads brand vocabularies from YAML files of the form
//
//	brands:
//	  - pattern: MIDEA
//	    brand: MIDEA
//	  - pattern: SANSUNG
//	    brand: SAMSUNG
//
// Entries keep their file order, which is the matching priority.
package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

type fileVocabulary struct {
	Brands []domain.BrandPattern `yaml:"brands"`
}

type Loader struct {
	storage ports.ObjectStorage
}

func NewLoader(storage ports.ObjectStorage) *Loader {
	return &Loader{storage: storage}
}

// Load returns the default vocabulary when path is empty.
func (l *Loader) Load(ctx context.Context, path string) (domain.BrandVocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultBrandVocabulary(), nil
	}

	reader, err := l.storage.Open(ctx, path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "open brand vocabulary", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "read brand vocabulary", err)
	}
	return Parse(data)
}

func Parse(data []byte) (domain.BrandVocabulary, error) {
	var doc fileVocabulary
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse brand vocabulary", err)
	}
	if len(doc.Brands) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse brand vocabulary", errors.New("no brands defined"))
	}

	vocabulary := make(domain.BrandVocabulary, 0, len(doc.Brands))
	for i, entry := range doc.Brands {
		pattern := strings.TrimSpace(entry.Pattern)
		brand := domain.Brand(strings.ToUpper(strings.TrimSpace(string(entry.Brand))))
		if pattern == "" || brand == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse brand vocabulary", fmt.Errorf("entry %d: pattern and brand are required", i+1))
		}
		vocabulary = append(vocabulary, domain.BrandPattern{Pattern: pattern, Brand: brand})
	}
	return vocabulary, nil
}
