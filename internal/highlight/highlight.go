// Package highlight holds the domain model for highlight annotations
// extracted from a PDF: the highlight itself, its bounding rectangle,
// the extraction mode, and the text policies applied to highlighted text.
package highlight

import (
	"encoding/json"
	"fmt"
)

// Rect is an axis-aligned bounding box in PDF user space (origin at the
// bottom-left of the page, units in points). X1 >= X0 and Y1 >= Y0 hold
// for every rectangle produced by the locator.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// MarshalJSON encodes the rectangle as a [x0, y0, x1, y1] array, the shape
// API clients receive.
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

func (r *Rect) UnmarshalJSON(data []byte) error {
	var coords [4]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("rect: %w", err)
	}
	r.X0, r.Y0, r.X1, r.Y1 = coords[0], coords[1], coords[2], coords[3]
	return nil
}

// Highlight is one detected highlight annotation. Created once by the
// locator and immutable afterwards; the two renderers consume the same
// slice independently.
type Highlight struct {
	Text string `json:"text"`
	Page int    `json:"page"` // 1-based source page number
	Rect Rect   `json:"rect"`
}
