package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, best opportunity scores first",
	RunE:  runLeadsList,
}

var leadsGetCmd = &cobra.Command{
	Use:   "get <lead-id>",
	Short: "Print one lead as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadsGet,
}

func init() {
	f := leadsListCmd.Flags()
	f.String("status", "", "filter by scrape status (pending|in_progress|success|error)")
	f.String("category", "", "filter by category")
	f.Float64("min-score", 0, "minimum opportunity score")
	f.Int("limit", 50, "maximum number of leads")
	f.Int("offset", 0, "number of leads to skip")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsGetCmd)
	rootCmd.AddCommand(leadsCmd)
}

func runLeadsList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	filter := store.LeadFilter{
		Status:   model.Status(status),
		Category: category,
		Limit:    limit,
		Offset:   offset,
	}
	if cmd.Flags().Changed("min-score") {
		filter.MinScore = &minScore
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	leads, err := st.ListLeads(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "leads: list")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSTATUS\tOPPORTUNITY\tPROPENSITY\tEMAIL\tPHONE")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Name, l.Category, l.ScrapeStatus,
			scoreCell(l.OpportunityScore), scoreCell(l.PropensityScore),
			l.Email, l.Phone,
		)
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "leads: flush output")
	}
	fmt.Printf("\n%d leads\n", len(leads))
	return nil
}

func runLeadsGet(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	lead, err := st.GetLead(ctx, args[0])
	if err != nil {
		return eris.Wrapf(err, "leads: get %s", args[0])
	}

	out, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return eris.Wrap(err, "leads: marshal lead")
	}
	fmt.Println(string(out))
	return nil
}

func scoreCell(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}
