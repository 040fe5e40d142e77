package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oxbow-be/pkg/tracker"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Request a mirror and wait for it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return follow(cmd.Context(), true)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a generation that is already running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return follow(cmd.Context(), false)
	},
}

// follow drives a tracker until it leaves the generating state.
func follow(ctx context.Context, request bool) error {
	t, log := newTracker()
	defer func() { _ = log.Sync() }()
	defer t.Close()

	changed := make(chan struct{}, 1)
	var (
		mu   sync.Mutex
		last tracker.State = -1
	)
	unsubscribe := t.Subscribe(func(s tracker.Snapshot) {
		mu.Lock()
		if s.State != last {
			last = s.State
			printState(s)
		}
		mu.Unlock()
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := t.Start(ctx); err != nil {
		// a running job is still worth watching without the count
		if t.Snapshot().State != tracker.StateGenerating {
			return printError(err)
		}
		_ = printError(err)
	}

	if t.Snapshot().State != tracker.StateGenerating {
		if !request {
			fmt.Println("Nothing is generating.")
			return nil
		}
		if err := t.RequestGeneration(ctx); err != nil {
			return printError(err)
		}
	}

	for {
		s := t.Snapshot()
		if s.State != tracker.StateGenerating && !s.Polling() {
			return report(s)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func printState(s tracker.Snapshot) {
	switch s.State {
	case tracker.StateGenerating:
		color.Cyan("Generating...")
	case tracker.StateThresholdNotMet:
		fmt.Printf("Keep writing: %d unassigned entries\n", s.Count)
	case tracker.StateReadyToGenerate:
		fmt.Printf("Ready to generate (%d unassigned entries)\n", s.Count)
	}
}

func report(s tracker.Snapshot) error {
	if s.LastError != nil {
		color.Red("%s: %s", s.LastError.Kind, s.LastError.Message)
		return s.LastError
	}
	if s.State == tracker.StateCompleted {
		printResult(s.Result)
	}
	return nil
}
