package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/pkg/buildinfo"
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/circuit/library"
	"github.com/matzehuels/cardstack/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "cardstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Cardstack builds circuit card stacks and turns them into algorithms",
		Long:          `Cardstack assembles procedurally generated circuit cards into a vertical stack, renders the stack, and sends it to the algorithm service for finalization.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.stackCommand())
	root.AddCommand(c.finalizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Card Sources
// =============================================================================

// loadLibrary returns the built-in presets merged with the TOML library at
// path, if any.
func loadLibrary(path string) (*library.Library, error) {
	lib := library.Default()
	if path == "" {
		return lib, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	defer f.Close()
	if err := lib.Load(f); err != nil {
		return nil, fmt.Errorf("load library %s: %w", path, err)
	}
	return lib, nil
}

// stackInput names the cards a command stacks, bottom first.
type stackInput struct {
	library string // extra TOML library
	cards   string // JSON file holding a card array
}

func (in *stackInput) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.library, "library", "l", "", "extra TOML card library merged over the presets")
	cmd.Flags().StringVar(&in.cards, "cards", "", "JSON file with an array of cards to stack before the preset ids")
}

// resolve returns the cards from the --cards file followed by the library
// cards named in ids.
func (in *stackInput) resolve(ids []string) ([]circuit.Card, error) {
	var cards []circuit.Card
	if in.cards != "" {
		imported, err := readCards(in.cards)
		if err != nil {
			return nil, err
		}
		cards = append(cards, imported...)
	}
	if len(ids) > 0 {
		lib, err := loadLibrary(in.library)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			card, err := lib.Get(id)
			if err != nil {
				return nil, err
			}
			cards = append(cards, card)
		}
	}
	if len(cards) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no cards given: pass preset ids or --cards")
	}
	return cards, nil
}

// readCards decodes a JSON card array. Every card must agree with its
// variant; dangling identifiers are tolerated.
func readCards(path string) ([]circuit.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	var cards []circuit.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	for i, c := range cards {
		if err := c.Check(); err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", i, c.ID, err)
		}
	}
	return cards, nil
}
