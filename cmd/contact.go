package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Track outreach per lead and channel",
}

var contactMarkCmd = &cobra.Command{
	Use:   "mark <lead-id> <channel>",
	Short: "Mark a lead as contacted on a channel",
	Long: `Marks a lead as contacted on one channel (email, phone, form, facebook,
instagram, address). The contact timestamp is set on the first mark only.`,
	Args: cobra.ExactArgs(2),
	RunE: runContactMark,
}

var contactUnmarkCmd = &cobra.Command{
	Use:   "unmark <lead-id> <channel>",
	Short: "Clear a contact mark and its timestamp",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactUnmark,
}

func init() {
	contactCmd.AddCommand(contactMarkCmd)
	contactCmd.AddCommand(contactUnmarkCmd)
	rootCmd.AddCommand(contactCmd)
}

func runContactMark(cmd *cobra.Command, args []string) error {
	return updateContact(cmd, args, true)
}

func runContactUnmark(cmd *cobra.Command, args []string) error {
	return updateContact(cmd, args, false)
}

func updateContact(cmd *cobra.Command, args []string, mark bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channel := model.Channel(args[1])
	if !channel.Valid() {
		return eris.Errorf("contact: unknown channel %q", args[1])
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	lead, err := st.GetLead(ctx, args[0])
	if err != nil {
		return eris.Wrapf(err, "contact: get lead %s", args[0])
	}

	var changed bool
	if mark {
		changed = lead.MarkContacted(channel)
	} else {
		changed = lead.UnmarkContacted(channel)
	}
	if !changed {
		fmt.Printf("lead %s: channel %s already in requested state\n", lead.ID, channel)
		return nil
	}

	if err := st.SaveLead(ctx, lead); err != nil {
		return eris.Wrapf(err, "contact: save lead %s", lead.ID)
	}

	if mark {
		fmt.Printf("lead %s (%s): contacted via %s at %s\n",
			lead.ID, lead.Name, channel, lead.ContactedAt[channel].Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("lead %s (%s): %s contact mark cleared\n", lead.ID, lead.Name, channel)
	}
	return nil
}
