package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/internal/config"
	"github.com/matzehuels/cardstack/pkg/analysis"
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/finalize"
	"github.com/matzehuels/cardstack/pkg/scene"
	"github.com/matzehuels/cardstack/pkg/session"
)

type finalizeOpts struct {
	input    stackInput
	endpoint string
	local    bool
}

// finalizeCommand sends a stack to the algorithm service.
func (c *CLI) finalizeCommand() *cobra.Command {
	var opts finalizeOpts

	cmd := &cobra.Command{
		Use:   "finalize [preset-id...]",
		Short: "Turn a stack into algorithm text",
		Long: `Stack cards and send them to the algorithm service.

The algorithm is printed to stdout. A failed call prints "Error: <message>"
instead; the request is made once, without retry. With --local the analysis
runs in-process and no service is needed. Without --endpoint the URL comes
from CARDSTACK_FINALIZE_ENDPOINT, falling back to the local service.`,
		Example: `  cardstack finalize and-gate matrix-basic
  cardstack finalize --cards stack.json --endpoint http://svc:5000/api/generate_encryption
  cardstack finalize and-gate --local`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := opts.input.resolve(args)
			if err != nil {
				return err
			}
			return runFinalize(cmd, cards, &opts)
		},
	}

	opts.input.addFlags(cmd)
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "finalize endpoint URL (default "+finalize.DefaultEndpoint+")")
	cmd.Flags().BoolVar(&opts.local, "local", false, "generate the algorithm in-process")

	return cmd
}

func runFinalize(cmd *cobra.Command, cards []circuit.Card, opts *finalizeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	finalizer, err := newFinalizer(opts, logger)
	if err != nil {
		return err
	}

	s := session.New(scene.NewMemoryBackend(), finalizer, session.WithLogger(logger))
	defer s.Close()
	for _, card := range cards {
		if _, err := s.Add(ctx, card); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	spin := newSpinner(ctx, stderr, fmt.Sprintf("Finalizing %d cards...", len(cards)))
	spin.Start()
	text, err := s.Finalize(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	if strings.HasPrefix(text, "Error: ") {
		printError(stderr, "Finalize failed")
	} else {
		printSuccess(stderr, "Finalized %d cards", len(cards))
		printStackStats(stderr, cards, analysis.Analyze(cards).Summary.ComplexityScore, false)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func newFinalizer(opts *finalizeOpts, logger *log.Logger) (session.Finalizer, error) {
	if opts.local {
		return localFinalizer{}, nil
	}
	endpoint := opts.endpoint
	if endpoint == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		endpoint = cfg.Finalize.Endpoint
	}
	logger.Debug("finalize endpoint", "url", endpoint)
	return finalize.NewClient(endpoint, finalize.WithLogger(logger))
}

// localFinalizer runs the algorithm generation without a service.
type localFinalizer struct{}

func (localFinalizer) Finalize(_ context.Context, cards []circuit.Card) (string, error) {
	text, _, err := analysis.Generate(cards)
	return text, err
}
