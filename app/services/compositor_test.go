package services

import (
	"strings"
	"testing"

	"vizbot/app"
)

func mainSpec(t *testing.T) FormatSpec {
	t.Helper()
	spec, err := ResolveFormat(app.FormatMain)
	if err != nil {
		t.Fatalf("resolving main format: %v", err)
	}
	return spec
}

func shortSpec(t *testing.T) FormatSpec {
	t.Helper()
	spec, err := ResolveFormat(app.FormatShort)
	if err != nil {
		t.Fatalf("resolving short format: %v", err)
	}
	return spec
}

func TestFilterString(t *testing.T) {
	f := Filter{Name: "scale", Args: []string{"3840", "2160", "force_original_aspect_ratio=increase"}}
	want := "scale=3840:2160:force_original_aspect_ratio=increase"
	if got := f.String(); got != want {
		t.Errorf("Filter.String() = %q, want %q", got, want)
	}

	bare := Filter{Name: "vignette"}
	if got := bare.String(); got != "vignette" {
		t.Errorf("bare filter = %q, want vignette", got)
	}
}

func TestChainString(t *testing.T) {
	c := Chain{
		Inputs: []string{"0:a"},
		Filters: []Filter{
			{Name: "showfreqs", Args: []string{"mode=bar"}},
			{Name: "format", Args: []string{"rgba"}},
		},
		Outputs: []string{"viz"},
	}
	want := "[0:a]showfreqs=mode=bar,format=rgba[viz]"
	if got := c.String(); got != want {
		t.Errorf("Chain.String() = %q, want %q", got, want)
	}
}

func TestChainStringSourceFilter(t *testing.T) {
	c := Chain{
		Filters: []Filter{{Name: "color", Args: []string{"c=black", "s=64x64"}}},
		Outputs: []string{"spk"},
	}
	if got := c.String(); got != "color=c=black:s=64x64[spk]" {
		t.Errorf("source chain = %q", got)
	}
}

func TestComposeOrdersLayersByZ(t *testing.T) {
	spec := mainSpec(t)
	layers := []LayerSpec{
		SpectrumLayer(10, 8),
		{Kind: LayerBackground, Z: 0, Build: func(spec FormatSpec, out string) []Chain {
			return []Chain{{Inputs: []string{"1:v"}, Filters: coverFitFilters(spec), Outputs: []string{out}}}
		}},
	}
	plan, err := Compose(spec, layers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Layers[0].Kind != LayerBackground {
		t.Error("background must sort to the bottom of the stack")
	}
	if plan.Graph.Output != "v" {
		t.Errorf("graph output label = %q, want v", plan.Graph.Output)
	}
}

func TestComposeRequiresBackground(t *testing.T) {
	spec := mainSpec(t)
	_, err := Compose(spec, []LayerSpec{SpectrumLayer(10, 8)})
	if app.KindOf(err) != app.ErrInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestComposeRejectsTextOnShort(t *testing.T) {
	spec := shortSpec(t)
	layers := []LayerSpec{
		{Kind: LayerBackground, Z: 0, Build: func(spec FormatSpec, out string) []Chain {
			return []Chain{{Inputs: []string{"1:v"}, Filters: coverFitFilters(spec), Outputs: []string{out}}}
		}},
		TitleLayer("Night Drive", 50),
	}
	_, err := Compose(spec, layers)
	if err == nil {
		t.Fatal("expected text layer rejection on short format")
	}
	if app.KindOf(err) != app.ErrInvalidInput {
		t.Errorf("error kind = %s, want %s", app.KindOf(err), app.ErrInvalidInput)
	}
}

func TestComposeScreenBlendLayer(t *testing.T) {
	spec := mainSpec(t)
	layers := []LayerSpec{
		{Kind: LayerBackground, Z: 0, Build: func(spec FormatSpec, out string) []Chain {
			return []Chain{{Inputs: []string{"1:v"}, Filters: coverFitFilters(spec), Outputs: []string{out}}}
		}},
		SparkleLayer(20),
	}
	plan, err := Compose(spec, layers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	graph := plan.Graph.String()
	if !strings.Contains(graph, "blend=all_mode=screen") {
		t.Errorf("sparkle layer should screen-blend onto the stack:\n%s", graph)
	}
	if !strings.Contains(graph, "lutrgb") {
		t.Errorf("sparkle layer should threshold its noise source:\n%s", graph)
	}
}

func TestComposeDeterministic(t *testing.T) {
	spec := mainSpec(t)
	build := func() string {
		layers, err := BuildLayers(PresetSpectrum, spec, "Night Drive", "@LatentFlow", 180)
		if err != nil {
			t.Fatalf("building layers: %v", err)
		}
		plan, err := Compose(spec, layers)
		if err != nil {
			t.Fatalf("composing: %v", err)
		}
		return plan.Graph.String()
	}
	first := build()
	for i := 0; i < 5; i++ {
		if got := build(); got != first {
			t.Fatalf("graph not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
}

func TestComposeGraphShape(t *testing.T) {
	spec := mainSpec(t)
	layers, err := BuildLayers(PresetWaves, spec, "Night Drive", "@LatentFlow", 180)
	if err != nil {
		t.Fatalf("building layers: %v", err)
	}
	plan, err := Compose(spec, layers)
	if err != nil {
		t.Fatalf("composing: %v", err)
	}
	graph := plan.Graph.String()

	for _, want := range []string{
		"scale=3840:2160:force_original_aspect_ratio=increase",
		"crop=3840:2160",
		"zoompan",
		"showwaves",
		"fade=t=in",
		"fade=t=out",
		"drawtext",
		"[v]",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("graph missing %q:\n%s", want, graph)
		}
	}

	// Text is drawn after the fades so titles keep full opacity.
	if strings.Index(graph, "drawtext") < strings.Index(graph, "fade=t=out") {
		t.Error("drawtext should come after the fade filters")
	}
}
