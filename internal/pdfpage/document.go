package pdfpage

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Document is an open PDF supplying extraction primitives per page. Text
// and word positions come from the text extractor; colored geometry comes
// from the page content streams.
type Document struct {
	path    string
	file    *os.File
	ctxFile *os.File
	reader  *pdf.Reader
	ctx     *model.Context
}

// Open validates and opens a PDF document.
func Open(path string, maxFileSize int64) (*Document, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}
	if maxFileSize > 0 && fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), maxFileSize)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	cf, err := os.Open(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(cf, conf)
	if err != nil {
		f.Close()
		cf.Close()
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		f.Close()
		cf.Close()
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &Document{
		path:    path,
		file:    f,
		ctxFile: cf,
		reader:  reader,
		ctx:     ctx,
	}, nil
}

// Close releases the underlying file handles.
func (d *Document) Close() error {
	err := d.file.Close()
	if cerr := d.ctxFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// Path returns the document's file path.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page extracts one page (1-based). Malformed pages yield an error rather
// than a panic.
func (d *Document) Page(n int) (p *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("panic extracting page %d of %s: %v", n, d.path, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("invalid page %d", n)
	}

	width, height := pageSize(page)

	text, err := page.GetPlainText(nil)
	if err != nil {
		text = ""
	}

	content := page.Content()
	chunks := make([]textChunk, 0, len(content.Text))
	for _, t := range content.Text {
		chunks = append(chunks, textChunk{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	words := buildWords(chunks)

	segments, marks := d.pageGeometry(n)

	return &Page{
		Number:   n,
		Width:    width,
		Height:   height,
		Text:     text,
		Words:    words,
		Segments: segments,
		Marks:    marks,
		Grid:     buildGrid(segments, words),
	}, nil
}

// pageGeometry scans the page's content stream for drawn segments and
// text marks. A page whose content cannot be decoded simply has no
// geometry.
func (d *Document) pageGeometry(n int) ([]Segment, []Mark) {
	if n > d.ctx.PageCount {
		return nil, nil
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, n)
	if err != nil || r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil, nil
	}
	return scanContent(data)
}

// pageSize reads the page MediaBox, falling back to US Letter when it is
// missing or malformed.
func pageSize(page pdf.Page) (float64, float64) {
	mb := page.V.Key("MediaBox")
	if mb.IsNull() || mb.Kind() != pdf.Array || mb.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	x0 := mb.Index(0).Float64()
	y0 := mb.Index(1).Float64()
	x1 := mb.Index(2).Float64()
	y1 := mb.Index(3).Float64()
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}
