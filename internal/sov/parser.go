package sov

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sovtools/sovgen/internal/pdfpage"
)

// Service extracts parts-list tables from variant PDFs.
type Service struct {
	opts Options
	log  zerolog.Logger
}

// NewService creates a parser service.
func NewService(opts Options, log zerolog.Logger) *Service {
	return &Service{opts: opts, log: log}
}

// ParseDocument extracts all table rows of one variant document. Pages
// that fail to render or carry no ruled table are skipped with a log
// line; a document yielding zero entries is reported, not fatal.
func (s *Service) ParseDocument(path, label string) (*VariantRecord, error) {
	doc, err := pdfpage.Open(path, s.opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	rec := &VariantRecord{Label: label}
	var texts []string

	for n := 1; n <= doc.NumPages(); n++ {
		page, err := doc.Page(n)
		if err != nil {
			s.log.Warn().Str("file", path).Int("page", n).Err(err).Msg("page extraction failed, skipping")
			continue
		}
		texts = append(texts, page.Text)

		if page.Grid == nil {
			continue
		}

		deleted := deletedIndices(page)
		cmap, headerRow := locateTable(page.Grid, s.opts.StrictHeader)
		if headerRow+1 >= len(page.Grid) {
			continue
		}

		for _, row := range page.Grid[headerRow+1:] {
			if e := normalizeRow(row, cmap, deleted, s.opts, n); e != nil {
				rec.Entries = append(rec.Entries, *e)
			}
		}
	}

	rec.CustomerID, rec.ProductID = extractMetadata(strings.Join(texts, "\n"))

	if len(rec.Entries) == 0 {
		s.log.Warn().Str("file", path).Str("label", label).Msg("no parts-list rows found")
	} else {
		s.log.Info().Str("label", label).Int("entries", len(rec.Entries)).Msg("parsed variant")
	}
	return rec, nil
}

// ParseAll parses every input concurrently. Results keep the input
// order regardless of completion order; any failure cancels the rest.
func (s *Service) ParseAll(ctx context.Context, inputs []Input) ([]VariantRecord, error) {
	records := make([]VariantRecord, len(inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.ParseDocument(in.Path, in.Label)
			if err != nil {
				return fmt.Errorf("variant %s: %w", in.Label, err)
			}
			records[i] = *rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
