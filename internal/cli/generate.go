package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/circuit/library"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/generator"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	params  generator.Params
	variant string
	seed    uint64
	uniform bool
	id      string
	format  string // json or toml
	output  string
	save    string // library file the card is appended to
}

// generateCommand creates a card from generator parameters.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		params: generator.DefaultParams(),
		format: formatJSON,
	}
	opts.variant = string(opts.params.Variant)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a circuit card",
		Long: `Generate a procedural circuit card.

The card is written to stdout (or --output) as JSON or as a TOML library
document. With --save it is also added to a TOML library file, which the
stack, finalize and view commands accept via --library.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.params.Variant = circuit.Variant(opts.variant)
			return runGenerate(cmd, &opts)
		},
	}

	p := &opts.params
	cmd.Flags().IntVar(&p.InputNodes, "inputs", p.InputNodes, "input node count (1-8)")
	cmd.Flags().IntVar(&p.OutputNodes, "outputs", p.OutputNodes, "output node count (1-8)")
	cmd.Flags().IntVar(&p.Connections, "connections", p.Connections, "matrix connection count (0-8)")
	cmd.Flags().IntVar(&p.MeshPoints, "mesh-points", p.MeshPoints, "mesh interaction point count (0-9)")
	cmd.Flags().IntVar(&p.Gates, "gates", p.Gates, "logic gate count (0-4)")
	cmd.Flags().StringVarP(&opts.variant, "type", "t", opts.variant, "card type: logic, matrix, hybrid")
	cmd.Flags().StringVar(&p.Color, "color", p.Color, "card color")
	cmd.Flags().StringVar(&p.Name, "name", p.Name, "card name")
	cmd.Flags().StringVar(&p.Description, "description", p.Description, "card description")
	cmd.Flags().Float64Var(&p.Height, "height", p.Height, "card height (0.1-0.5)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible cards (0 picks one)")
	cmd.Flags().BoolVar(&opts.uniform, "uniform-shuffle", false, "pair matrix connections with an unbiased shuffle")
	cmd.Flags().StringVar(&opts.id, "id", "", "card id (default: random card-xxxxxxx)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, toml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.save, "save", "", "add the card to this TOML library file")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOpts) error {
	logger := loggerFromContext(cmd.Context())

	if opts.format != formatJSON && opts.format != formatTOML {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be json or toml)", opts.format)
	}
	if err := opts.params.Validate(); err != nil {
		return err
	}
	if opts.id != "" {
		if err := errors.ValidateIdentifier(opts.id); err != nil {
			return err
		}
	}

	var genOpts []generator.Option
	if opts.seed != 0 {
		genOpts = append(genOpts, generator.WithSeed(opts.seed))
	}
	if opts.uniform {
		genOpts = append(genOpts, generator.WithUniformShuffle())
	}
	if opts.id != "" {
		genOpts = append(genOpts, generator.WithID(opts.id))
	}
	card := generator.Generate(opts.params, genOpts...)
	logger.Debug("generated card", "id", card.ID, "type", card.Variant, "nodes", len(card.Nodes), "gates", len(card.Gates))

	data, err := encodeCard(card, opts.format)
	if err != nil {
		return err
	}
	if opts.output == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return fmt.Errorf("write card: %w", err)
		}
		printSuccess(cmd.ErrOrStderr(), "Generated %s", card.ID)
		printFile(cmd.ErrOrStderr(), opts.output)
	}

	if opts.save != "" {
		if err := saveToLibrary(opts.save, card); err != nil {
			return err
		}
		printSuccess(cmd.ErrOrStderr(), "Saved %s to library", card.ID)
		printFile(cmd.ErrOrStderr(), opts.save)
	}
	return nil
}

func encodeCard(card circuit.Card, format string) ([]byte, error) {
	if format == formatTOML {
		var buf bytes.Buffer
		if err := library.Encode(&buf, []circuit.Card{card}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode card")
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode card")
	}
	return append(data, '\n'), nil
}

// saveToLibrary adds card to the library file at path, creating it if needed.
func saveToLibrary(path string, card circuit.Card) error {
	lib := library.New()
	f, err := os.Open(path)
	switch {
	case err == nil:
		loadErr := lib.Load(f)
		f.Close()
		if loadErr != nil {
			return fmt.Errorf("load library %s: %w", path, loadErr)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("open library: %w", err)
	}
	if err := lib.Add(card); err != nil {
		return err
	}
	return writeLibrary(path, lib.All())
}

func writeLibrary(path string, cards []circuit.Card) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".library-*.toml")
	if err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	if err := library.Encode(tmp, cards); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write library: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
