// Package pdf reads PDF files through MuPDF.
package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/docbridge-ai/docbridge/internal/domain"
)

// Opener opens PDF documents from disk. It implements domain.DocumentOpener.
type Opener struct{}

// NewOpener returns an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the PDF at path.
func (*Opener) Open(path string) (domain.Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ExtractionError("failed to open PDF", err)
	}

	return &Document{doc: doc}, nil
}

// Document is an open PDF backed by MuPDF.
type Document struct {
	doc *fitz.Document
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.doc.NumPage()
}

// PageText returns the embedded text layer of the given zero-based page.
func (d *Document) PageText(page int) (string, error) {
	text, err := d.doc.Text(page)
	if err != nil {
		return "", domain.ExtractionError(fmt.Sprintf("failed to read text layer of page %d", page+1), err)
	}

	return text, nil
}

// RenderPNG rasterizes the given zero-based page at the given DPI and
// returns the encoded PNG bytes.
func (d *Document) RenderPNG(page int, dpi float64) ([]byte, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("failed to rasterize page %d", page+1), err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.ExtractionError("failed to encode page raster", err)
	}

	return buf.Bytes(), nil
}

// Title returns the document metadata title, empty when absent.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Metadata()["title"])
}

// Close releases the MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}
