package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the wayfinder release and the platform it was built for",
	RunE: func(cmd *cobra.Command, args []string) error {
		release := strings.TrimSpace(wayfinder.Version)
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(release)
			return nil
		}
		fmt.Printf("wayfinder %s (%s, %s/%s)\n", release, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "Print only the release number")
}
