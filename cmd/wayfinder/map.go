package main

import (
	"fmt"
	"os"
	"strings"

	mermaid "github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Inspect the building map",
}

var mapExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the map in its normalized text format",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := graph.Load(cfg.MapPath)
		if err != nil {
			return err
		}
		return graph.Write(os.Stdout, m)
	},
}

var mapMermaidCmd = &cobra.Command{
	Use:   "mermaid",
	Short: "Export the map as a Mermaid flowchart",
	Long:  `Outputs a Mermaid diagram (graph LR). Passages that need an accessibility level are dotted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := graph.Load(cfg.MapPath)
		if err != nil {
			return err
		}
		var overlay *mermaid.RouteOverlay
		if route, _ := cmd.Flags().GetString("route"); route != "" {
			path := strings.Split(route, ",")
			overlay = &mermaid.RouteOverlay{Path: path, Current: path[0]}
		}
		fmt.Print(mermaid.GenerateMermaid(m.Rooms(), m.Edges(), m.Directed(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.AddCommand(mapExportCmd)
	mapCmd.AddCommand(mapMermaidCmd)
	mapMermaidCmd.Flags().String("route", "", "Comma separated rooms to highlight")
}
