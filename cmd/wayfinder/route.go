package main

import (
	"fmt"
	"os"

	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var routeCmd = &cobra.Command{
	Use:   "route <from> <to>",
	Short: "Plan the shortest accessible route between two rooms",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		plain, _ := cmd.Flags().GetBool("plain")
		from, to := args[0], args[1]

		m, err := graph.Load(cfg.MapPath)
		if err != nil {
			return err
		}
		for _, room := range args {
			if !m.Has(room) {
				return fmt.Errorf("%w: %q", domain.ErrUnknownRoom, room)
			}
		}

		total, path := m.ShortestPath(from, to, level)
		if len(path) == 0 {
			return fmt.Errorf("%w from %s to %s at level %d", domain.ErrNoRouteFound, from, to, level)
		}

		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("%s (%g m)\n", path.String(), total)
			return nil
		}
		out, err := tui.RenderRoute(tui.NewRenderer(), from, to, level, total, path)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().IntP("level", "l", 0, "Accessibility level of the user")
	routeCmd.Flags().Bool("plain", false, "Plain text output even on a terminal")
}
