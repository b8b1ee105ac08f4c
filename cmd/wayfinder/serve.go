package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitoring HTTP server",
	Long: `Exposes routes, the map, running trips, metrics and a live event stream.
With --guide the robot also guides the given user while serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		if !cmd.Flags().Changed("listen") {
			listen = cfg.HTTP.Listen
		}
		guideUser, _ := cmd.Flags().GetInt("guide")
		from, _ := cmd.Flags().GetString("from")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := cli.Build(ctx, cfg, logger, cli.IO{In: os.Stdin, Out: os.Stdout}, from)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := &http.Server{
			Addr:              listen,
			Handler:           app.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting wayfinder server", "addr", srv.Addr, "map", cfg.MapPath)
			serverErrors <- srv.ListenAndServe()
		}()

		if cmd.Flags().Changed("guide") {
			go func() {
				opts := cli.GuideOptions{UserID: guideUser, From: from}
				if err := cli.RunGuide(ctx, app, opts, os.Stdout); err != nil {
					logger.Error("Guide failed", "err", err)
				}
			}()
		}

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		logger.Info("Wayfinder server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().Int("guide", -1, "Also guide this user ID while serving")
	serveCmd.Flags().StringP("from", "f", "Lobby", "Room the robot is in")
}
