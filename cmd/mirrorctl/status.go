package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oxbow-be/pkg/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show unassigned entries, generation status and eligibility",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := newClient()

	count, err := client.UnassignedCount(ctx, userID)
	if err != nil {
		return printError(err)
	}
	fmt.Printf("Unassigned entries: %d\n", count)

	report, err := client.CheckStatus(ctx, userID)
	if err != nil {
		return printError(err)
	}
	printReport(report)

	elig, err := client.CheckEligibility(ctx, userID)
	if err != nil {
		return printError(err)
	}
	if elig.CanGenerate {
		color.Green("Ready to generate")
	} else {
		color.Yellow("Not eligible (%s): %s", elig.Reason, elig.Message)
		if !elig.RetryAt.IsZero() {
			fmt.Printf("Retry after %s\n", elig.RetryAt.Local().Format("15:04:05"))
		}
	}
	return nil
}

func printReport(r *tracker.StatusReport) {
	switch r.Status {
	case tracker.StatusNone:
		fmt.Println("Status: no mirror requested yet")
	case tracker.StatusPending, tracker.StatusProcessing:
		color.Cyan("Status: %s (requested %s)", r.Status, r.RequestedAt.Local().Format("15:04:05"))
	case tracker.StatusCompleted:
		printResult(r.Result)
	case tracker.StatusFailed:
		color.Red("Status: failed (%s) %s", r.ErrorCode, r.ErrorMessage)
	}
}

func printResult(res *tracker.Result) {
	if res == nil {
		color.Green("Status: completed")
		return
	}
	viewed := "new"
	if res.HasBeenViewed {
		viewed = "viewed"
	}
	color.Green("Mirror %q ready (%s, id %s)", res.Title, viewed, res.ID)
}

func printError(err error) error {
	te := tracker.ClassifyError(err)
	color.Red("%s: %s", te.Kind, te.Message)
	return err
}
