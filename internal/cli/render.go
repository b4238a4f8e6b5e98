package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/render/schematic"
	"github.com/matzehuels/cardstack/pkg/render/sink"
	"github.com/matzehuels/cardstack/pkg/scene"
)

const (
	renderJSON      = "json"
	renderSVG       = "svg"
	renderPNG       = "png"
	renderText      = "text"
	renderDOT       = "dot"
	renderSchematic = "schematic"
)

var renderFormats = []string{renderJSON, renderSVG, renderPNG, renderText, renderDOT, renderSchematic}

// renderOpts holds the command-line flags for the stack command.
type renderOpts struct {
	input    stackInput
	format   string
	output   string
	width    int
	height   int
	links    bool    // overlay resolved mesh links
	detailed bool    // node coordinates in schematic labels
	orbit    float64 // camera azimuth in degrees
	tilt     float64 // camera polar delta in degrees
}

// stackCommand stacks cards bottom to top and renders the result.
func (c *CLI) stackCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "stack [preset-id...]",
		Short: "Stack cards and render the scene",
		Long: `Stack cards bottom to top and render the scene.

Cards come from the --cards JSON file followed by the named presets. Formats:
  json       layout slots and projected primitives
  svg, png   perspective view through the scene camera
  text       character view for terminals
  dot        Graphviz source of the connectivity schematic
  schematic  the schematic rendered to SVG`,
		Example: `  cardstack stack and-gate matrix-basic -f svg -o stack.svg
  cardstack stack and-gate mesh-connector -f text --links`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(renderFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of %s)", opts.format, strings.Join(renderFormats, ", "))
			}
			cards, err := opts.input.resolve(args)
			if err != nil {
				return err
			}
			return runStack(cmd, cards, &opts)
		},
	}

	opts.input.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", renderSVG, "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output width in pixels, or columns for text")
	cmd.Flags().IntVar(&opts.height, "height", 0, "output height in pixels, or rows for text")
	cmd.Flags().BoolVar(&opts.links, "links", false, "draw mesh links between cards")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node coordinates in the schematic")
	cmd.Flags().Float64Var(&opts.orbit, "orbit", 0, "rotate the camera around the stack (degrees)")
	cmd.Flags().Float64Var(&opts.tilt, "tilt", 0, "tilt the camera up or down (degrees)")

	return cmd
}

func runStack(cmd *cobra.Command, cards []circuit.Card, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	data, err := renderCards(cmd.Context(), cards, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d cards as %s", len(cards), opts.format))

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(cmd.ErrOrStderr(), "Stacked %d cards", len(cards))
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

func renderCards(ctx context.Context, cards []circuit.Card, opts *renderOpts) ([]byte, error) {
	switch opts.format {
	case renderDOT:
		return []byte(schematic.ToDOT(cards, schematic.Options{Detailed: opts.detailed})), nil
	case renderSchematic:
		return schematic.RenderSVG(ctx, schematic.ToDOT(cards, schematic.Options{Detailed: opts.detailed}))
	}

	sc := sink.NewScene(cards)
	if opts.format == renderJSON {
		return sink.RenderJSON(sc)
	}

	var sinkOpts []sink.Option
	if opts.width > 0 && opts.height > 0 {
		sinkOpts = append(sinkOpts, sink.WithSize(opts.width, opts.height))
	}
	if opts.links {
		sinkOpts = append(sinkOpts, sink.WithLinks())
	}
	if opts.orbit != 0 || opts.tilt != 0 {
		sinkOpts = append(sinkOpts, sink.WithCamera(orbitCamera(sc.Layout.Extent, opts.orbit, opts.tilt)))
	}

	switch opts.format {
	case renderPNG:
		return sink.RenderPNG(sc, sinkOpts...)
	case renderText:
		return []byte(sink.RenderText(sc, sinkOpts...)), nil
	default:
		return sink.RenderSVG(sc, sinkOpts...), nil
	}
}

// orbitCamera frames a stack of the given extent and rotates around it.
func orbitCamera(extent, azimuth, polar float64) *scene.Camera {
	cam := scene.NewCamera()
	cam.Frame(extent)
	if extent > geometry.Footprint {
		cam.Zoom(extent / geometry.Footprint)
	}
	cam.Orbit(azimuth*math.Pi/180, polar*math.Pi/180)
	return cam
}
