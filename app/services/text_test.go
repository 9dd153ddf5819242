package services

import (
	"strings"
	"testing"
)

func TestEscapeDrawtext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Night Drive", "Night Drive"},
		{"Rock 'n' Roll", `Rock \'n\' Roll`},
		{"4:44", `4\:44`},
		{"100% Pure", `100\% Pure`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeDrawtext(tt.in); got != tt.want {
			t.Errorf("escapeDrawtext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleAtFixedTopLeftOffset(t *testing.T) {
	spec := mainSpec(t)
	s := TitleLayer("Night Drive", 50).InPlace(spec, "in", "out")[0].String()
	if !strings.Contains(s, "x=120") || !strings.Contains(s, "y=120") {
		t.Errorf("title should sit at fixed offsets from the top-left: %s", s)
	}
	if strings.Contains(s, "text_w)/2") {
		t.Errorf("title must not be centered: %s", s)
	}
	if !strings.Contains(s, "fontcolor=white:") {
		t.Errorf("title fill should be opaque white: %s", s)
	}
}

func TestWatermarkSitsAboveStrip(t *testing.T) {
	spec := mainSpec(t)
	layer := WatermarkLayer("@LatentFlow", 51)
	chains := layer.InPlace(spec, "in", "out")
	if len(chains) != 1 {
		t.Fatalf("expected one chain, got %d", len(chains))
	}
	s := chains[0].String()
	if !strings.Contains(s, "h-text_h-330") {
		t.Errorf("watermark y offset should clear the 270px strip plus margin: %s", s)
	}
	if !strings.Contains(s, "fontcolor=white@0.7") {
		t.Errorf("watermark fill should be semi-transparent white: %s", s)
	}
}

func TestTitleEscapedInChain(t *testing.T) {
	spec := mainSpec(t)
	layer := TitleLayer("It's 5:00", 50)
	s := layer.InPlace(spec, "in", "out")[0].String()
	if !strings.Contains(s, `It\'s 5\:00`) {
		t.Errorf("title not escaped for drawtext: %s", s)
	}
}
