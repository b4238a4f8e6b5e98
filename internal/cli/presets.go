package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/pkg/circuit"
)

// presetsCommand lists the card library.
func (c *CLI) presetsCommand() *cobra.Command {
	var (
		libPath string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "presets [id]",
		Short: "List the card presets",
		Long: `List the built-in card presets, plus any cards from --library.
With an id, print that card as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(libPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				card, err := lib.Get(args[0])
				if err != nil {
					return err
				}
				data, err := encodeCard(card, formatJSON)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			cards := lib.All()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cards)
			}
			fmt.Fprintln(out, StyleTitle.Render("Card Presets"))
			fmt.Fprintln(out, cardTable(cards))
			printDangling(out, cards)
			return nil
		},
	}

	cmd.Flags().StringVarP(&libPath, "library", "l", "", "extra TOML card library merged over the presets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the library as a JSON card array")

	return cmd
}

// printDangling warns about references in cards that name nothing on the card.
func printDangling(w io.Writer, cards []circuit.Card) {
	for _, c := range cards {
		for _, ref := range c.DanglingRefs() {
			printWarning(w, "%s: %s", c.ID, ref)
		}
	}
}
