package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
)

// fakeSource satisfies raster.Source with canned images, so layout tests
// run without MuPDF or a real document.
type fakeSource struct {
	page   func(n int, scale float64) (image.Image, error)
	region func(n int, rect highlight.Rect, scale float64) (image.Image, error)
}

func (f *fakeSource) Page(n int, scale float64) (image.Image, error) {
	return f.page(n, scale)
}

func (f *fakeSource) Region(n int, rect highlight.Rect, scale float64) (image.Image, error) {
	return f.region(n, rect, scale)
}

func blank(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func testEngine() *PDFEngine {
	return &PDFEngine{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	if len(data) == 0 {
		t.Fatal("engine returned no document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", data[:min(len(data), 8)])
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reopen generated pdf: %v", err)
	}
	return r.NumPage()
}

func TestRenderEmptyHighlightsSinglePage(t *testing.T) {
	src := &fakeSource{
		page:   func(int, float64) (image.Image, error) { return nil, fmt.Errorf("must not render") },
		region: func(int, highlight.Rect, float64) (image.Image, error) { return nil, fmt.Errorf("must not render") },
	}

	for _, mode := range []highlight.Mode{highlight.ModeFullPage, highlight.ModeCroppedHighlight} {
		out := testEngine().Render(src, nil, mode)
		if n := pageCount(t, out); n != 1 {
			t.Errorf("mode %s: expected 1 page for empty highlights, got %d", mode, n)
		}
	}
}

func TestRenderFullPageDedupsSourcePages(t *testing.T) {
	var rendered []int
	src := &fakeSource{
		page: func(n int, scale float64) (image.Image, error) {
			if scale != DocScale {
				t.Errorf("expected page scale %d, got %v", DocScale, scale)
			}
			rendered = append(rendered, n)
			return blank(1190, 1684), nil
		},
	}
	hs := []highlight.Highlight{
		{Page: 3, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 3, Rect: highlight.Rect{X0: 0, Y0: 20, X1: 10, Y1: 30}},
	}

	out := testEngine().Render(src, hs, highlight.ModeFullPage)

	if n := pageCount(t, out); n != 2 {
		t.Errorf("expected 2 output pages for 2 distinct source pages, got %d", n)
	}
	if len(rendered) != 2 || rendered[0] != 1 || rendered[1] != 3 {
		t.Errorf("expected pages [1 3] rendered once each in order, got %v", rendered)
	}
}

func TestRenderFullPageContinuationForTallCapture(t *testing.T) {
	src := &fakeSource{
		page: func(n int, scale float64) (image.Image, error) {
			// Too tall to fit below the caption at full printable width.
			return blank(600, 4000), nil
		},
	}
	hs := []highlight.Highlight{{Page: 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}}}

	out := testEngine().Render(src, hs, highlight.ModeFullPage)

	if n := pageCount(t, out); n != 2 {
		t.Errorf("expected caption page plus continuation page, got %d pages", n)
	}
}

func TestRenderCroppedPaginates(t *testing.T) {
	src := &fakeSource{
		region: func(n int, rect highlight.Rect, scale float64) (image.Image, error) {
			if scale != CropScale {
				t.Errorf("expected crop scale %d, got %v", CropScale, scale)
			}
			return blank(495, 400), nil
		},
	}
	// Three 400pt-tall crops cannot share one 842pt page.
	var hs []highlight.Highlight
	for i := 0; i < 3; i++ {
		hs = append(hs, highlight.Highlight{Page: i + 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 165, Y1: 133}})
	}

	out := testEngine().Render(src, hs, highlight.ModeCroppedHighlight)

	if n := pageCount(t, out); n <= 1 {
		t.Errorf("expected pagination across multiple pages, got %d", n)
	}
}

func TestRenderCroppedSkipsFailedCaptures(t *testing.T) {
	src := &fakeSource{
		region: func(n int, rect highlight.Rect, scale float64) (image.Image, error) {
			if n == 2 {
				return nil, fmt.Errorf("page 2 is broken")
			}
			return blank(200, 40), nil
		},
	}
	hs := []highlight.Highlight{
		{Page: 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 2, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 3, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
	}

	out := testEngine().Render(src, hs, highlight.ModeCroppedHighlight)

	// Two surviving crops still fit one page; the failure is dropped, not fatal.
	if n := pageCount(t, out); n != 1 {
		t.Errorf("expected 1 page with the surviving crops, got %d", n)
	}
}

func TestRenderDegradesToErrorDocument(t *testing.T) {
	src := &fakeSource{
		page: func(int, float64) (image.Image, error) {
			return nil, fmt.Errorf("renderer is down")
		},
		region: func(int, highlight.Rect, float64) (image.Image, error) {
			return nil, fmt.Errorf("renderer is down")
		},
	}
	hs := []highlight.Highlight{{Page: 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}}}

	for _, mode := range []highlight.Mode{highlight.ModeFullPage, highlight.ModeCroppedHighlight} {
		out := testEngine().Render(src, hs, mode)
		if n := pageCount(t, out); n != 1 {
			t.Errorf("mode %s: expected single-page error document, got %d pages", mode, n)
		}
	}
}

func TestRenderUnknownModeProducesErrorDocument(t *testing.T) {
	src := &fakeSource{
		page: func(int, float64) (image.Image, error) {
			return blank(600, 800), nil
		},
		region: func(int, highlight.Rect, float64) (image.Image, error) {
			// Tall enough that cropped rendering would need several pages.
			return blank(300, 400*CropScale), nil
		},
	}
	hs := []highlight.Highlight{
		{Page: 1, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 2, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
		{Page: 3, Rect: highlight.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}},
	}

	// The zero Mode is not a valid rendering choice; it must not fall
	// through to either real mode. Both real renders of this input would
	// produce several pages, so a single page can only be the error notice.
	out := testEngine().Render(src, hs, highlight.Mode(0))
	if n := pageCount(t, out); n != 1 {
		t.Errorf("expected single-page error document, got %d pages", n)
	}
}
