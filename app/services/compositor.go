package services

import (
	"sort"
	"strconv"
	"strings"

	"vizbot/app"
)

// Filter is one ffmpeg filter with positional and keyword arguments already
// rendered as strings. Args are joined with ':' when serialized.
type Filter struct {
	Name string
	Args []string
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	return f.Name + "=" + strings.Join(f.Args, ":")
}

// Chain is one linear filter chain in a graph: labeled inputs, a filter
// sequence, labeled outputs.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	parts := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		parts[i] = f.String()
	}
	b.WriteString(strings.Join(parts, ","))
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// FilterGraph is a structured filter_complex graph. It stays structured
// through planning and composition; serialization to the engine's string
// syntax happens only at the invocation boundary.
type FilterGraph struct {
	Chains []Chain
	// Output is the label of the final video stream (mapped with -map).
	Output string
}

func (g FilterGraph) String() string {
	parts := make([]string, len(g.Chains))
	for i, c := range g.Chains {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// LayerKind identifies what a composition layer contributes.
type LayerKind string

const (
	LayerBackground    LayerKind = "background"
	LayerVisualization LayerKind = "visualization"
	LayerSparkle       LayerKind = "sparkle"
	LayerOverlayText   LayerKind = "overlay_text"
)

// BlendMode selects how a layer combines with the stack beneath it.
type BlendMode string

const (
	BlendNormal  BlendMode = "normal"
	BlendScreen  BlendMode = "screen"
	BlendOverlay BlendMode = "overlay"
)

// LayerSpec is one layer of a composition plan. Build produces the chains
// that realize the layer; for non-background layers the chains must leave
// their result under the given output label.
type LayerSpec struct {
	Kind  LayerKind
	Z     int
	Blend BlendMode
	// FullFrame layers cover the whole canvas; others anchor to the
	// bottom strip.
	FullFrame bool
	Build     func(spec FormatSpec, out string) []Chain
	// InPlace layers transform the running stack directly instead of
	// producing a stream to overlay (text, fades).
	InPlace func(spec FormatSpec, in, out string) []Chain
}

// CompositionPlan is the immutable output of planning: the resolved format,
// the ordered layers, and the encode parameters. The engine command is
// derived from it; it is never mutated after Compose.
type CompositionPlan struct {
	Format FormatSpec
	Layers []LayerSpec
	Graph  FilterGraph
}

// Compose assembles the layer specs into a single filter graph. Layers are
// stacked in ascending z order; exactly one background layer is required and
// it must sit at the bottom. Overlay-text layers are rejected for formats
// that disallow text.
func Compose(spec FormatSpec, layers []LayerSpec) (*CompositionPlan, error) {
	if len(layers) == 0 {
		return nil, app.NewError(app.ErrInvalidInput, "composition requires at least one layer")
	}

	ordered := make([]LayerSpec, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })

	backgrounds := 0
	for _, l := range ordered {
		if l.Kind == LayerBackground {
			backgrounds++
		}
		if l.Kind == LayerOverlayText && !spec.AllowsText {
			return nil, app.Errorf(app.ErrInvalidInput,
				"text layers are not permitted on format %q", spec.Class)
		}
	}
	if backgrounds != 1 {
		return nil, app.Errorf(app.ErrInvalidInput,
			"composition requires exactly one background layer, got %d", backgrounds)
	}
	if ordered[0].Kind != LayerBackground {
		return nil, app.NewError(app.ErrInvalidInput, "background layer must have the lowest z index")
	}

	var graph FilterGraph
	stack := ""
	label := 0
	next := func(prefix string) string {
		label++
		return prefix + strconv.Itoa(label)
	}

	for _, l := range ordered {
		switch {
		case l.Kind == LayerBackground:
			out := next("bg")
			graph.Chains = append(graph.Chains, l.Build(spec, out)...)
			stack = out

		case l.InPlace != nil:
			out := next("st")
			graph.Chains = append(graph.Chains, l.InPlace(spec, stack, out)...)
			stack = out

		default:
			lout := next("ly")
			graph.Chains = append(graph.Chains, l.Build(spec, lout)...)
			out := next("st")
			graph.Chains = append(graph.Chains, blendChain(l, spec, stack, lout, out))
			stack = out
		}
	}

	graph.Output = "v"
	graph.Chains = append(graph.Chains, Chain{
		Inputs:  []string{stack},
		Filters: []Filter{{Name: "format", Args: []string{"yuv420p"}}},
		Outputs: []string{graph.Output},
	})

	return &CompositionPlan{Format: spec, Layers: ordered, Graph: graph}, nil
}

// blendChain combines a layer stream onto the running stack. Normal layers
// carry their own alpha and use overlay positioning; screen and overlay
// modes use blend with full-frame streams.
func blendChain(l LayerSpec, spec FormatSpec, base, layer, out string) Chain {
	switch l.Blend {
	case BlendScreen, BlendOverlay:
		return Chain{
			Inputs: []string{base, layer},
			Filters: []Filter{{Name: "blend", Args: []string{
				"all_mode=" + string(l.Blend),
				"all_opacity=1",
			}}},
			Outputs: []string{out},
		}
	default:
		// Strip layers anchor to the bottom edge.
		y := "y=" + itoa(spec.Height-spec.StripHeight)
		if l.FullFrame {
			y = "y=0"
		}
		return Chain{
			Inputs: []string{base, layer},
			Filters: []Filter{{Name: "overlay", Args: []string{
				"x=0",
				y,
			}}},
			Outputs: []string{out},
		}
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
