package highlight

import (
	"encoding/json"
	"testing"
)

func TestRectEmpty(t *testing.T) {
	cases := []struct {
		rect Rect
		want bool
	}{
		{Rect{0, 0, 10, 10}, false},
		{Rect{5, 5, 5, 10}, true},  // zero width
		{Rect{5, 5, 10, 5}, true},  // zero height
		{Rect{10, 10, 5, 5}, true}, // inverted
	}
	for _, c := range cases {
		if got := c.rect.Empty(); got != c.want {
			t.Errorf("Rect%+v.Empty() = %v, want %v", c.rect, got, c.want)
		}
	}
}

func TestRectJSONIsCoordinateArray(t *testing.T) {
	h := Highlight{Text: "hi", Page: 2, Rect: Rect{1, 2, 3.5, 4}}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"text":"hi","page":2,"rect":[1,2,3.5,4]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Highlight
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != h {
		t.Errorf("round trip: got %+v, want %+v", back, h)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("full_page"); err != nil || m != ModeFullPage {
		t.Errorf("ParseMode(full_page) = %v, %v", m, err)
	}
	if m, err := ParseMode("cropped_highlight"); err != nil || m != ModeCroppedHighlight {
		t.Errorf("ParseMode(cropped_highlight) = %v, %v", m, err)
	}
	for _, bad := range []string{"", "fullpage", "FULL_PAGE", "both"} {
		if _, err := ParseMode(bad); err == nil {
			t.Errorf("ParseMode(%q) accepted, want error", bad)
		}
	}
}
