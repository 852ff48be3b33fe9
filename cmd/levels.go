package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/images"
)

var (
	levelsProgression string
	levelsStart       int
	levelsFinal       int
	levelsImages      string
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the levels, card counts and grids of a progression.",
	Args:  cobra.NoArgs,
	RunE:  runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&levelsProgression, "progression", "linear", "linear or even")
	levelsCmd.Flags().IntVar(&levelsStart, "start", 0, "first level (even progression only)")
	levelsCmd.Flags().IntVar(&levelsFinal, "final", 0, "final level")
	levelsCmd.Flags().StringVar(&levelsImages, "images", "", "image list file (default: embedded list)")
	rootCmd.AddCommand(levelsCmd)
}

func runLevels(cmd *cobra.Command, args []string) error {
	p, err := game.ParseProgression(levelsProgression, levelsStart, levelsFinal)
	if err != nil {
		return err
	}
	pool, err := images.Load(levelsImages)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tCARDS\tPAIRS\tGRID")
	for _, lv := range game.Levels(p) {
		n := p.CardCount(lv)
		rows, cols := game.GridDimensions(n)
		fmt.Fprintf(w, "%d\t%d\t%d\t%dx%d\n", lv, n, n/2, rows, cols)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if err := game.ValidateProgression(p, len(pool)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "image pool: %d (ok)\n", len(pool))
	return nil
}
