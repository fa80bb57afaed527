package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
	"github.com/pdfhilite/pdfhilite/internal/raster"
)

const emuPerInch = 914400

// Embedded captures are scaled to a fixed 6-inch display width.
const captureWidthEMU = 6 * emuPerInch

// DOCXComposer flows extracted highlights into a text document, swapping
// in a capture image for any highlight the classifier marks complex.
type DOCXComposer struct {
	Log *slog.Logger
	// ScratchDir receives temporary capture files; each one is deleted
	// before the highlight that produced it is done composing.
	ScratchDir string
}

// Render builds the textual artifact. Failures on individual highlights
// degrade to text or a placeholder paragraph; only serialization of the
// finished document can fail.
func (d *DOCXComposer) Render(src raster.Source, hs []highlight.Highlight) ([]byte, error) {
	doc := d.compose(src, hs)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *DOCXComposer) compose(src raster.Source, hs []highlight.Highlight) *docx.Docx {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph()
	title.Style("Heading1")
	title.AddText("Extracted PDF Highlights")

	if len(hs) == 0 {
		doc.AddParagraph().AddText("No highlights found in the document.")
		return doc
	}

	for i, h := range hs {
		pagePara := doc.AddParagraph()
		pagePara.AddText(fmt.Sprintf("Page %d:", h.Page)).Bold()

		text := highlight.Sanitize(h.Text)
		if !highlight.IsComplex(text) {
			doc.AddParagraph().AddText(text)
			continue
		}
		d.addComplex(doc, src, h, i, text)
	}
	return doc
}

// addComplex embeds a capture of the highlight's rectangle. If the capture
// cannot be produced the sanitized text is emitted instead; if it renders
// but cannot be embedded, a bracketed placeholder names the page. The
// temporary capture file is removed on every path once it exists.
func (d *DOCXComposer) addComplex(doc *docx.Docx, src raster.Source, h highlight.Highlight, idx int, text string) {
	img, err := src.Region(h.Page, h.Rect, CropScale)
	if err != nil {
		d.Log.Warn("highlight capture failed, falling back to text",
			"page", h.Page, "highlight", idx, "error", err)
		doc.AddParagraph().AddText(text)
		return
	}

	tmpPath, err := writeTempPNG(d.ScratchDir, img)
	if err != nil {
		d.Log.Warn("capture encode failed, falling back to text",
			"page", h.Page, "highlight", idx, "error", err)
		doc.AddParagraph().AddText(text)
		return
	}
	defer os.Remove(tmpPath)

	para := doc.AddParagraph()
	run, err := para.AddInlineDrawingFrom(tmpPath)
	if err != nil {
		d.Log.Error("capture embed failed, inserting placeholder",
			"page", h.Page, "highlight", idx, "error", err)
		para.AddText(fmt.Sprintf("[[Image not available for complex text on Page %d]]", h.Page))
		return
	}
	setDrawingWidth(run, img.Bounds(), captureWidthEMU)
}

// setDrawingWidth resizes an inline drawing to a fixed width, preserving
// the capture's aspect ratio.
func setDrawingWidth(run *docx.Run, bounds image.Rectangle, widthEMU int64) {
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return
	}
	heightEMU := int64(float64(widthEMU) * float64(bounds.Dy()) / float64(bounds.Dx()))
	for _, child := range run.Children {
		drawing, ok := child.(*docx.Drawing)
		if !ok || drawing.Inline == nil || drawing.Inline.Extent == nil {
			continue
		}
		drawing.Inline.Extent.CX = widthEMU
		drawing.Inline.Extent.CY = heightEMU
	}
}

func writeTempPNG(dir string, img image.Image) (string, error) {
	f, err := os.CreateTemp(dir, "capture-*.png")
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode capture %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close capture %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
