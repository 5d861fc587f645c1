package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"rhystmorgan/contactterm/internal/audit"
	"rhystmorgan/contactterm/internal/storage"
)

var (
	flagFormat string
	flagOut    string
	flagID     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every contact to a JSON or CSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := storage.ParseExportFormat(flagFormat)
		if err != nil {
			return err
		}

		out := flagOut
		if out == "" {
			out = "contacts." + format.String()
		}

		if err := env.contacts.Load(cmd.Context()); err != nil {
			return err
		}
		contacts := env.contacts.Contacts()

		if err := storage.NewContactExporter(format).ExportFile(out, contacts); err != nil {
			return err
		}

		if env.trail != nil {
			if err := env.trail.RecordExport(format.String(), out, len(contacts)); err != nil {
				env.logger.Warn("failed to record export", "error", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s.\n", len(contacts), out)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if env.trail == nil {
			return errors.New("audit trail is disabled")
		}

		entries, err := env.trail.History(flagID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history.")
			return nil
		}
		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %-6s  %s  %s\n",
				entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
				entry.Action,
				entry.ContactID,
				describeEntry(entry))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagFormat, "format", "json", "export format (json or csv)")
	exportCmd.Flags().StringVar(&flagOut, "out", "", "output file (default contacts.<format>)")

	historyCmd.Flags().StringVar(&flagID, "id", "", "only show entries for this contact")
}

func describeEntry(entry audit.Entry) string {
	var parts []string
	for field, change := range entry.Changes {
		parts = append(parts, fmt.Sprintf("%s: %q -> %q", field, change.OldValue, change.NewValue))
	}
	for key, value := range entry.Details {
		parts = append(parts, key+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
