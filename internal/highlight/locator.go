package highlight

import (
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Locator scans a parsed PDF for highlight annotations and pairs each one
// with the text lying under its rectangle.
type Locator struct {
	Log *slog.Logger
}

// Locate walks every page in document order and returns one Highlight per
// well-formed highlight annotation, in page order then page-internal
// annotation order. Malformed annotations are skipped, never fatal. A
// highlight is kept even when no text falls inside its rectangle.
func (l *Locator) Locate(r *pdf.Reader) []Highlight {
	var out []Highlight
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}

		annots := page.V.Key("Annots")
		if annots.IsNull() || annots.Kind() != pdf.Array {
			continue
		}

		var texts []pdf.Text
		textsLoaded := false

		for i := 0; i < annots.Len(); i++ {
			annot := annots.Index(i)
			if annot.IsNull() {
				continue
			}
			if annot.Key("Subtype").Name() != "Highlight" {
				continue
			}
			rect, ok := rectFromValue(annot.Key("Rect"))
			if !ok || rect.Empty() {
				l.Log.Debug("skipping malformed highlight annotation", "page", n, "annot", i)
				continue
			}

			// The text layer is only needed once a highlight survives.
			if !textsLoaded {
				texts = pageTexts(page)
				textsLoaded = true
			}

			out = append(out, Highlight{
				Text: strings.TrimSpace(TextInRect(texts, rect)),
				Page: n,
				Rect: rect,
			})
		}
	}
	return out
}

// rectFromValue reads a /Rect array, normalizing corner order so that
// (X0,Y0) is the lower-left corner.
func rectFromValue(v pdf.Value) (Rect, bool) {
	if v.IsNull() || v.Kind() != pdf.Array || v.Len() < 4 {
		return Rect{}, false
	}
	var c [4]float64
	for i := range c {
		c[i] = v.Index(i).Float64()
	}
	return Rect{
		X0: min(c[0], c[2]),
		Y0: min(c[1], c[3]),
		X1: max(c[0], c[2]),
		Y1: max(c[1], c[3]),
	}, true
}

// pageTexts reads the positioned text layer of a page.
// ledongthuc/pdf panics on some malformed content streams and fonts, so a
// failed page degrades to no text rather than aborting the scan.
func pageTexts(p pdf.Page) (texts []pdf.Text) {
	defer func() {
		if recover() != nil {
			texts = nil
		}
	}()
	return p.Content().Text
}

// TextInRect concatenates, in content-stream order, every text fragment
// whose horizontal midpoint and baseline fall inside r. Fragments and r
// share the same PDF user space, so no transform is needed here.
func TextInRect(texts []pdf.Text, r Rect) string {
	var b strings.Builder
	for _, t := range texts {
		cx := t.X + t.W/2
		if cx < r.X0 || cx > r.X1 {
			continue
		}
		if t.Y < r.Y0 || t.Y > r.Y1 {
			continue
		}
		b.WriteString(t.S)
	}
	return b.String()
}
