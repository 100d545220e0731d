// Package docx appends plain paragraphs to a WordprocessingML template.
//
// Only word/document.xml is rewritten; every other part of the package is
// copied verbatim, in the template's order and with its timestamps, so the
// same template and paragraphs always produce the same bytes.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

const documentPart = "word/document.xml"

var (
	bodyOpen    = []byte("<w:body>")
	bodyClose   = []byte("</w:body>")
	sectionProp = []byte("<w:sectPr")
	blockEnds   = [][]byte{[]byte("</w:p>"), []byte("</w:tbl>"), []byte("</w:sdt>")}
)

type Loader struct {
	storage ports.ObjectStorage
}

func NewLoader(storage ports.ObjectStorage) *Loader {
	return &Loader{storage: storage}
}

func (l *Loader) Load(ctx context.Context, path string) (ports.ReportDocument, error) {
	reader, err := l.storage.Open(ctx, path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "open template", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "read template", err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Document is a template with paragraphs queued for the end of its body.
type Document struct {
	files []*zip.File
	main  *zip.File
	body  []byte
	added bytes.Buffer
}

func Parse(raw []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "read template", err)
	}

	doc := &Document{files: zr.File}
	for _, f := range zr.File {
		if f.Name == documentPart {
			doc.main = f
			break
		}
	}
	if doc.main == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read template", errors.New("missing "+documentPart))
	}

	rc, err := doc.main.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "open "+documentPart, err)
	}
	defer rc.Close()
	if doc.body, err = io.ReadAll(rc); err != nil {
		return nil, domain.WrapError(domain.ErrInputAccess, "read "+documentPart, err)
	}
	if !bytes.Contains(doc.body, bodyClose) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read template", errors.New("document has no body"))
	}
	return doc, nil
}

func (d *Document) AddPageBreak() {
	d.added.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

// AddParagraph appends text as one paragraph; embedded newlines become line breaks.
func (d *Document) AddParagraph(text string) {
	d.added.WriteString("<w:p>")
	if text != "" {
		d.added.WriteString("<w:r>")
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				d.added.WriteString("<w:br/>")
			}
			if line == "" {
				continue
			}
			d.added.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(&d.added, []byte(line))
			d.added.WriteString("</w:t>")
		}
		d.added.WriteString("</w:r>")
	}
	d.added.WriteString("</w:p>")
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, f := range d.files {
		if f != d.main {
			if err := zw.Copy(f); err != nil {
				return cw.n, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		part, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return cw.n, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := part.Write(d.merged()); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close package: %w", err)
	}
	return cw.n, nil
}

// merged places the queued paragraphs after the last body block, ahead of the
// body-level section properties which must stay the last child of w:body.
func (d *Document) merged() []byte {
	end := bytes.LastIndex(d.body, bodyClose)
	at := end
	tail := lastBlockEnd(d.body[:end])
	if idx := bytes.Index(d.body[tail:end], sectionProp); idx >= 0 {
		at = tail + idx
	}

	out := make([]byte, 0, len(d.body)+d.added.Len())
	out = append(out, d.body[:at]...)
	out = append(out, d.added.Bytes()...)
	out = append(out, d.body[at:]...)
	return out
}

func lastBlockEnd(body []byte) int {
	end := 0
	for _, closing := range blockEnds {
		if i := bytes.LastIndex(body, closing); i >= 0 && i+len(closing) > end {
			end = i + len(closing)
		}
	}
	if end == 0 {
		if i := bytes.Index(body, bodyOpen); i >= 0 {
			end = i + len(bodyOpen)
		}
	}
	return end
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
