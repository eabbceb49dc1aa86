package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Moirius/La-Station-Prospection/internal/scorer"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute scores for every stored lead",
	Long: `Re-runs the opportunity and contact-propensity scoring over all stored
leads and persists the leads whose scores changed. Safe to run at any time;
scoring is deterministic over the current field values.`,
	RunE: runRescore,
}

func init() {
	rootCmd.AddCommand(rescoreCmd)
}

func runRescore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	summary := scorer.RecomputeAll(ctx, st)

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "rescore: marshal summary")
	}
	fmt.Println(string(out))

	if summary.Errors > 0 {
		return eris.Errorf("rescore: %d leads failed", summary.Errors)
	}
	return nil
}
