// Package raster renders PDF pages and page regions to bitmaps using
// go-fitz (MuPDF).
package raster

import (
	"fmt"
	"image"
	"math"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
)

// Source produces bitmap captures of the pages of one open document.
// Scale magnifies the page in both axes: 2 is screen quality for document
// views, 3 is print quality for small crops. A render failure is reported
// as an error; callers decide the fallback.
type Source interface {
	// Page renders page n (1-based) in full.
	Page(n int, scale float64) (image.Image, error)
	// Region renders only rect, given in PDF user space with the origin at
	// the bottom-left of page n.
	Region(n int, rect highlight.Rect, scale float64) (image.Image, error)
}

// Document is a Source backed by an in-memory PDF.
type Document struct {
	doc *fitz.Document
}

// Open parses data for rendering. The returned Document must be closed.
func Open(data []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) Close() error { return d.doc.Close() }

func (d *Document) Page(n int, scale float64) (image.Image, error) {
	if n < 1 || n > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", n, d.doc.NumPage())
	}
	// MuPDF renders at 72 DPI for a 1:1 mapping of points to pixels.
	img, err := d.doc.ImageDPI(n-1, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n, err)
	}
	return img, nil
}

func (d *Document) Region(n int, rect highlight.Rect, scale float64) (image.Image, error) {
	full, err := d.Page(n, scale)
	if err != nil {
		return nil, err
	}
	bounds, err := d.doc.Bound(n - 1)
	if err != nil {
		return nil, fmt.Errorf("page %d bounds: %w", n, err)
	}

	px := clipRect(rect, float64(bounds.Dy()), scale, full.Bounds())
	if px.Empty() {
		return nil, fmt.Errorf("page %d: clip %+v lies outside the rendered page", n, rect)
	}
	rgba, ok := full.(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("page %d: unexpected raster type %T", n, full)
	}
	return rgba.SubImage(px), nil
}

// clipRect maps a user-space rectangle onto the pixel grid of a page
// rendered at the given scale, clamped to the rendered bounds. MuPDF puts
// the raster origin at the top-left while PDF user space grows upward from
// the bottom-left, so the y axis flips: the rectangle's top edge (Y1)
// becomes the smaller pixel row.
func clipRect(r highlight.Rect, pageHeight, scale float64, bounds image.Rectangle) image.Rectangle {
	px := image.Rect(
		int(math.Floor(r.X0*scale)),
		int(math.Floor((pageHeight-r.Y1)*scale)),
		int(math.Ceil(r.X1*scale)),
		int(math.Ceil((pageHeight-r.Y0)*scale)),
	)
	return px.Intersect(bounds)
}
