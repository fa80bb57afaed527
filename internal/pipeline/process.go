// Package pipeline sequences highlight extraction and rendering of the
// two output artifacts for one uploaded document.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
	"github.com/pdfhilite/pdfhilite/internal/raster"
	"github.com/pdfhilite/pdfhilite/internal/render"
)

// ErrSourceUnreadable marks input that cannot be opened as a PDF at all.
// It is the only failure that aborts a whole request.
var ErrSourceUnreadable = errors.New("source is not a readable PDF")

// Result is everything one processed upload produces. Highlights is never
// nil so it serializes as a JSON array.
type Result struct {
	Highlights []highlight.Highlight
	PDFBytes   []byte
	DOCXBytes  []byte
}

// Processor runs the extract-and-render pipeline. One call handles one
// document; Processor itself holds no per-request state and is safe for
// concurrent use.
type Processor struct {
	log     *slog.Logger
	locator *highlight.Locator
	engine  *render.PDFEngine
	docx    *render.DOCXComposer
}

func NewProcessor(scratchDir string, log *slog.Logger) *Processor {
	return &Processor{
		log:     log,
		locator: &highlight.Locator{Log: log},
		engine:  &render.PDFEngine{Log: log},
		docx:    &render.DOCXComposer{Log: log, ScratchDir: scratchDir},
	}
}

// Process locates highlights in pdfData once, then derives the visual PDF
// and the textual DOCX independently from the same immutable slice. The
// two render passes are isolated: the PDF engine degrades to an error page
// internally, and the composer degrades per highlight, so neither can
// prevent the other from completing.
func (p *Processor) Process(ctx context.Context, pdfData []byte, mode highlight.Mode) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		p.log.Error("pdf open failed", "size", len(pdfData), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	src, err := raster.Open(pdfData)
	if err != nil {
		p.log.Error("pdf raster open failed", "size", len(pdfData), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	defer src.Close()

	hs := p.locator.Locate(reader)
	if hs == nil {
		hs = []highlight.Highlight{}
	}
	p.log.Info("highlights located", "count", len(hs), "mode", mode.String())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfBytes := p.engine.Render(src, hs, mode)

	docxBytes, err := p.docx.Render(src, hs)
	if err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}

	return &Result{
		Highlights: hs,
		PDFBytes:   pdfBytes,
		DOCXBytes:  docxBytes,
	}, nil
}
