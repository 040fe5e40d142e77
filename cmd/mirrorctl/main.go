// Package main implements mirrorctl, a terminal client for mirror generation.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oxbow-be/internal/config"
	"oxbow-be/pkg/mirrorclient"
	"oxbow-be/pkg/tracker"
)

var (
	serverURL string
	token     string
	userID    string
	verbose   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mirrorctl",
	Short: "Request and follow Oxbow mirrors from the terminal",
	Long: `mirrorctl talks to the Oxbow API as the user behind --token.

Examples:
  # Show the current state
  mirrorctl status --token $TOKEN

  # Ask for a mirror and wait until it is ready
  mirrorctl generate --token $TOKEN`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("OXBOW_SERVER", "http://localhost:3000"), "Oxbow API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("OXBOW_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user id, used for logging only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log tracker internals")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *mirrorclient.Client {
	return mirrorclient.New(serverURL, token)
}

// newTracker builds a tracker with the poll settings from the environment.
func newTracker() (*tracker.Tracker, *zap.Logger) {
	cfg := config.Load()

	log := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}

	t := tracker.New(newClient(), userID,
		tracker.WithConfig(tracker.Config{
			Threshold:       cfg.Mirror.Threshold,
			MaxAttempts:     cfg.Tracker.MaxAttempts,
			PollInterval:    cfg.Tracker.PollInterval,
			ForegroundRetry: cfg.Tracker.ForegroundRetry,
			ViewedTimeout:   10 * time.Second,
		}),
		tracker.WithLogger(log),
	)
	return t, log
}
