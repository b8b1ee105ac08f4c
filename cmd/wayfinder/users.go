package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage registered users",
}

var usersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenUsers(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		all, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No users registered.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMODALITY\tLANG\tLEVEL")
		for _, u := range all {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Modality, u.Lang, u.Level)
		}
		return w.Flush()
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <name> <modality> <lang>",
	Short: "Register a user without going through the robot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		modality, err := domain.ParseModality(args[1])
		if err != nil {
			return err
		}
		store, closeStore, err := cli.OpenUsers(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		id, err := store.NextID(cmd.Context())
		if err != nil {
			return err
		}
		user := domain.User{ID: id, Name: args[0], Modality: modality, Lang: args[2], Level: level}
		if err := store.Append(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Printf("Registered %s\n", user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersLsCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersAddCmd.Flags().IntP("level", "l", 0, "Accessibility level")
}
