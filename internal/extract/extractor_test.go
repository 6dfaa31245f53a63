package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// fakeDocument implements domain.Document for extractor tests.
type fakeDocument struct {
	pages     []string
	pageErr   error
	raster    []byte
	rasterErr error
	title     string

	rendered []int
	closed   bool
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) {
	if d.pageErr != nil {
		return "", d.pageErr
	}
	return d.pages[page], nil
}

func (d *fakeDocument) RenderPNG(page int, dpi float64) ([]byte, error) {
	d.rendered = append(d.rendered, page)
	if d.rasterErr != nil {
		return nil, d.rasterErr
	}
	return d.raster, nil
}

func (d *fakeDocument) Title() string { return d.title }

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// fakeOpener implements domain.DocumentOpener.
type fakeOpener struct {
	doc    *fakeDocument
	err    error
	opened int
}

func (o *fakeOpener) Open(path string) (domain.Document, error) {
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestExtractor(opener domain.DocumentOpener, maxBytes int64) *Extractor {
	return NewExtractor(opener, maxBytes, 300, observability.Nop())
}

func TestExtract_PlainFile(t *testing.T) {
	opener := &fakeOpener{}
	e := newTestExtractor(opener, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "notes.txt", "hello world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, domain.SourcePlainFile, result.Source)
	assert.Empty(t, result.Images)
	assert.Equal(t, 0, opener.opened, "non-PDF files must not be opened as documents")
}

func TestExtract_PlainFileDropsInvalidUTF8(t *testing.T) {
	e := newTestExtractor(&fakeOpener{}, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "raw.bin", "hi\xff\xfe!"))
	require.NoError(t, err)

	assert.Equal(t, "hi!", result.Text)
	assert.Equal(t, domain.SourcePlainFile, result.Source)
}

func TestExtract_BlankPlainFile(t *testing.T) {
	e := newTestExtractor(&fakeOpener{}, 10<<20)

	_, err := e.Extract(context.Background(), writeTemp(t, "blank.txt", "  \n\t "))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEmptyContent))
}

func TestExtract_MissingFile(t *testing.T) {
	e := newTestExtractor(&fakeOpener{}, 10<<20)

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeFileNotFound))
}

func TestExtract_SizeCapEnforcedBeforeParsing(t *testing.T) {
	opener := &fakeOpener{doc: &fakeDocument{pages: []string{"text"}}}
	e := newTestExtractor(opener, 8)

	// Exactly at the cap fails.
	_, err := e.Extract(context.Background(), writeTemp(t, "big.pdf", "12345678"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeFileTooLarge))
	assert.Equal(t, 0, opener.opened, "oversized files must be rejected before parsing")

	// Just under the cap passes.
	result, err := e.Extract(context.Background(), writeTemp(t, "ok.pdf", "1234567"))
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePDFTextLayer, result.Source)
}

func TestExtract_PDFTextLayer(t *testing.T) {
	doc := &fakeDocument{pages: []string{"Page one text", "Page two"}}
	e := newTestExtractor(&fakeOpener{doc: doc}, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "report.pdf", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "Page one text\nPage two\n", result.Text)
	assert.Equal(t, domain.SourcePDFTextLayer, result.Source)
	assert.Empty(t, result.Images, "text-layer PDFs must not be rasterized")
	assert.Empty(t, doc.rendered)
	assert.True(t, doc.closed)
}

func TestExtract_PDFTextLayerSkipsEmptyPages(t *testing.T) {
	doc := &fakeDocument{pages: []string{"alpha", "", "beta"}}
	e := newTestExtractor(&fakeOpener{doc: doc}, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "mixed.pdf", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "alpha\nbeta\n", result.Text, "pages without text must not leave blank lines")
	assert.Equal(t, domain.SourcePDFTextLayer, result.Source)
	assert.Empty(t, doc.rendered)
}

func TestExtract_PDFDetectionIsCaseInsensitive(t *testing.T) {
	doc := &fakeDocument{pages: []string{"content"}}
	opener := &fakeOpener{doc: doc}
	e := newTestExtractor(opener, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "SCAN.PDF", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePDFTextLayer, result.Source)
	assert.Equal(t, 1, opener.opened)
}

func TestExtract_PDFContentWithoutExtensionIsPlain(t *testing.T) {
	opener := &fakeOpener{}
	e := newTestExtractor(opener, 10<<20)

	// Detection is by extension only, never by sniffing file contents.
	result, err := e.Extract(context.Background(), writeTemp(t, "actually-a.pdf.txt", "%PDF-1.7 raw bytes"))
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePlainFile, result.Source)
	assert.Equal(t, 0, opener.opened)
}

func TestExtract_PDFRasterFallback(t *testing.T) {
	doc := &fakeDocument{
		pages:  []string{"   ", "\n\t"},
		raster: []byte{0x89, 'P', 'N', 'G'},
		title:  "Annual Report",
	}
	e := newTestExtractor(&fakeOpener{doc: doc}, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "scan.pdf", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "Document metadata title: Annual Report", result.Text)
	assert.Equal(t, domain.SourcePDFRasterFallback, result.Source)
	require.Len(t, result.Images, 1)
	assert.Equal(t, doc.raster, result.Images[0])
	assert.Equal(t, []int{0}, doc.rendered, "only the first page is rasterized")
}

func TestExtract_PDFRasterFallbackWithoutTitle(t *testing.T) {
	doc := &fakeDocument{
		pages:  []string{""},
		raster: []byte{1},
		title:  "  ",
	}
	e := newTestExtractor(&fakeOpener{doc: doc}, 10<<20)

	result, err := e.Extract(context.Background(), writeTemp(t, "scan.pdf", "%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "Document metadata title: Unknown", result.Text)
}

func TestExtract_PDFRasterFailure(t *testing.T) {
	doc := &fakeDocument{
		pages:     []string{""},
		rasterErr: domain.ExtractionError("failed to rasterize page 1", nil),
	}
	e := newTestExtractor(&fakeOpener{doc: doc}, 10<<20)

	_, err := e.Extract(context.Background(), writeTemp(t, "scan.pdf", "%PDF-1.7"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeExtraction))
}

func TestExtract_PDFOpenFailure(t *testing.T) {
	opener := &fakeOpener{err: domain.ExtractionError("failed to open PDF", nil)}
	e := newTestExtractor(opener, 10<<20)

	_, err := e.Extract(context.Background(), writeTemp(t, "corrupt.pdf", "not a pdf"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeExtraction))
}
