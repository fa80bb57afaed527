package highlight

import "fmt"

// Mode selects the layout strategy for the visual output PDF.
type Mode int

const (
	// ModeFullPage renders each highlighted source page in full.
	ModeFullPage Mode = iota + 1
	// ModeCroppedHighlight renders only the highlighted sub-regions.
	ModeCroppedHighlight
)

func (m Mode) String() string {
	switch m {
	case ModeFullPage:
		return "full_page"
	case ModeCroppedHighlight:
		return "cropped_highlight"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts the wire value into a Mode. Anything outside the two
// known values is rejected at the boundary rather than defaulted.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "full_page":
		return ModeFullPage, nil
	case "cropped_highlight":
		return ModeCroppedHighlight, nil
	}
	return 0, fmt.Errorf("unknown extraction mode %q", s)
}
