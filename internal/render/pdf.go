// Package render composes located highlights into the two output
// artifacts: a paginated visual PDF and a flowing textual DOCX.
package render

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/unidoc/unipdf/v3/creator"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
	"github.com/pdfhilite/pdfhilite/internal/raster"
)

// Raster magnification, relative to the source page's point size.
const (
	// DocScale is used for whole-page captures.
	DocScale = 2
	// CropScale is used for single-highlight crops.
	CropScale = 3
)

// Output page geometry, in points.
const (
	pageWidth  = 595.0 // A4
	pageHeight = 842.0
	margin     = 50.0
	itemGap    = 25.0 // vertical space between cropped highlights
)

// PDFEngine lays out page captures into a new paginated document.
type PDFEngine struct {
	Log *slog.Logger
}

// Render builds the visual artifact for the given mode. It always returns
// a well-formed PDF: a "no highlights" page when hs is empty, and a
// single-page error notice if composition fails as a whole. Failures on
// individual pages or highlights only drop that item.
func (e *PDFEngine) Render(src raster.Source, hs []highlight.Highlight, mode highlight.Mode) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error("visual pdf composition panicked", "mode", mode.String(), "panic", r)
			out = e.errorDocument()
		}
	}()

	c := newA4Creator()

	var err error
	switch {
	case len(hs) == 0:
		err = drawMessagePage(c, "No highlights found in the uploaded document.")
	case mode == highlight.ModeFullPage:
		err = e.renderFullPages(c, src, hs)
	case mode == highlight.ModeCroppedHighlight:
		err = e.renderCropped(c, src, hs)
	default:
		err = fmt.Errorf("unknown render mode %d", mode)
	}

	if err == nil {
		var buf bytes.Buffer
		if err = c.Write(&buf); err == nil {
			return buf.Bytes()
		}
	}

	e.Log.Error("visual pdf composition failed", "mode", mode.String(), "error", err)
	return e.errorDocument()
}

// renderFullPages emits one output page per distinct highlighted source
// page, ascending, each carrying a caption and the whole page capture.
func (e *PDFEngine) renderFullPages(c *creator.Creator, src raster.Source, hs []highlight.Highlight) error {
	drawn := 0
	for _, pageNum := range distinctPages(hs) {
		img, err := src.Page(pageNum, DocScale)
		if err != nil {
			e.Log.Warn("page capture failed, skipping", "page", pageNum, "error", err)
			continue
		}
		if err := e.placeFullPage(c, img, pageNum); err != nil {
			return err
		}
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("no highlighted page could be captured")
	}
	return nil
}

func (e *PDFEngine) placeFullPage(c *creator.Creator, img image.Image, pageNum int) error {
	c.NewPage()
	y := margin
	if err := drawCaption(c, fmt.Sprintf("Original Page %d (with highlights):", pageNum), 14, y); err != nil {
		return err
	}
	y += 25

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	maxW := pageWidth - 2*margin
	avail := pageHeight - y - margin

	// When the image cannot fit below the caption at its maximum
	// horizontal scale, continue on a page of its own and fit against the
	// full page height instead.
	if h*(maxW/w) > avail {
		c.NewPage()
		y = margin
		if err := drawCaption(c, fmt.Sprintf("(Continued from Original Page %d)", pageNum), 10, y); err != nil {
			return err
		}
		y += 20
		avail = pageHeight - y - margin
	}

	scale := fitScale(w, h, maxW, avail)
	sw, sh := w*scale, h*scale
	x := margin + (maxW-sw)/2
	return drawImage(c, img, x, y, sw, sh)
}

// renderCropped flows highlight crops down a running page, breaking to a
// fresh page whenever the next image would cross the bottom margin.
func (e *PDFEngine) renderCropped(c *creator.Creator, src raster.Source, hs []highlight.Highlight) error {
	c.NewPage()
	y := margin
	drawn := 0
	for i, h := range hs {
		img, err := src.Region(h.Page, h.Rect, CropScale)
		if err != nil {
			e.Log.Warn("highlight capture failed, skipping",
				"page", h.Page, "highlight", i, "error", err)
			continue
		}

		iw := float64(img.Bounds().Dx())
		ih := float64(img.Bounds().Dy())
		scale := cropFitScale(iw, pageWidth-2*margin)
		sw, sh := iw*scale, ih*scale

		if y+sh+margin > pageHeight {
			c.NewPage()
			y = margin
		}

		if err := drawCaption(c, fmt.Sprintf("Page %d Highlight:", h.Page), 10, y); err != nil {
			return err
		}
		y += 15
		if err := drawImage(c, img, margin, y, sw, sh); err != nil {
			return err
		}
		y += sh + itemGap
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("no highlight region could be captured")
	}
	return nil
}

// errorDocument is the degenerate result when the layout pass as a whole
// fails: a single page with a generic notice.
func (e *PDFEngine) errorDocument() []byte {
	c := newA4Creator()
	if err := drawMessagePage(c, "Error generating visual highlights. Please try again or check the original PDF."); err != nil {
		e.Log.Error("error document composition failed", "error", err)
		return nil
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		e.Log.Error("error document serialization failed", "error", err)
		return nil
	}
	return buf.Bytes()
}

func newA4Creator() *creator.Creator {
	c := creator.New()
	c.SetPageSize(creator.PageSize{pageWidth, pageHeight})
	return c
}

func drawMessagePage(c *creator.Creator, msg string) error {
	c.NewPage()
	return drawCaption(c, msg, 12, margin)
}

func drawCaption(c *creator.Creator, text string, size, y float64) error {
	p := c.NewParagraph(text)
	p.SetFontSize(size)
	p.SetPos(margin, y)
	return c.Draw(p)
}

func drawImage(c *creator.Creator, img image.Image, x, y, w, h float64) error {
	im, err := c.NewImageFromGoImage(img)
	if err != nil {
		return fmt.Errorf("embed capture: %w", err)
	}
	im.SetPos(x, y)
	im.SetWidth(w)
	im.SetHeight(h)
	return c.Draw(im)
}

// fitScale returns the largest factor that fits a w×h image inside
// maxW×maxH. It exceeds 1 only when the image is smaller than the box in
// both axes.
func fitScale(w, h, maxW, maxH float64) float64 {
	return math.Min(maxW/w, maxH/h)
}

// cropFitScale fits a crop to the printable width without ever upscaling.
func cropFitScale(w, maxW float64) float64 {
	return math.Min(maxW/w, 1.0)
}

// distinctPages returns the source pages referenced by any highlight,
// deduplicated and ascending regardless of annotation order.
func distinctPages(hs []highlight.Highlight) []int {
	seen := make(map[int]bool, len(hs))
	var pages []int
	for _, h := range hs {
		if !seen[h.Page] {
			seen[h.Page] = true
			pages = append(pages, h.Page)
		}
	}
	sort.Ints(pages)
	return pages
}
