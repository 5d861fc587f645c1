package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/storage"
	"rhystmorgan/contactterm/internal/utils"
)

var (
	flagJSON  bool
	flagName  string
	flagPhone string
	flagMail  string
	flagYes   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.contacts.Load(cmd.Context()); err != nil {
			return err
		}
		contacts := env.contacts.Contacts()

		out := cmd.OutOrStdout()
		if flagJSON {
			return storage.NewContactExporter(storage.FormatJSON).Export(out, contacts)
		}

		if len(contacts) == 0 {
			fmt.Fprintln(out, "No contacts.")
			return nil
		}
		for _, contact := range contacts {
			fmt.Fprintf(out, "%-24s  %s\n", contact.ID, utils.FormatContactLine(contact, 24))
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := models.NewContactFields(flagName, flagPhone, flagMail)
		if err := env.contacts.Create(cmd.Context(), fields); err != nil {
			return err
		}

		created := env.contacts.Contacts()
		if len(created) > 0 && created[0].ID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s).\n", created[0].DisplayName(), created[0].ID)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Created.")
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a contact; unset fields keep their current values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		if _, err := findContact(ctx, id); err != nil {
			return err
		}

		changes := models.ContactPatch{}
		if cmd.Flags().Changed("name") {
			changes.Name = &flagName
		}
		if cmd.Flags().Changed("phone") {
			changes.Phone = &flagPhone
		}
		if cmd.Flags().Changed("email") {
			changes.Email = &flagMail
		}

		if err := env.contacts.Update(ctx, id, changes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		contact, err := findContact(ctx, id)
		if err != nil {
			return err
		}

		env.gate.Request(confirm.Confirmation{
			Title:        "Delete contact",
			Description:  fmt.Sprintf("Delete %s? This cannot be undone.", contact.DisplayName()),
			ConfirmLabel: "Delete",
			Action: func(ctx context.Context) error {
				return env.contacts.Delete(ctx, id)
			},
		})

		if !flagYes {
			details := map[string]string{
				"ID":      contact.ID,
				"Name":    contact.DisplayName(),
				"Details": utils.FormatContactDetails(contact),
			}
			fmt.Fprint(cmd.OutOrStdout(), utils.FormatConfirmationText("delete", details)+" ")
			if !readYes(cmd.InOrStdin()) {
				env.gate.Dismiss()
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := env.gate.Accept(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", id)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")

	for _, cmd := range []*cobra.Command{addCmd, editCmd} {
		cmd.Flags().StringVar(&flagName, "name", "", "contact name")
		cmd.Flags().StringVar(&flagPhone, "phone", "", "phone number")
		cmd.Flags().StringVar(&flagMail, "email", "", "email address")
	}
	_ = addCmd.MarkFlagRequired("name")

	deleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")
}

// findContact loads the collection and returns the cached record for id.
func findContact(ctx context.Context, id string) (models.Contact, error) {
	if err := env.contacts.Load(ctx); err != nil {
		return models.Contact{}, err
	}
	for _, contact := range env.contacts.Contacts() {
		if contact.ID == id {
			return contact, nil
		}
	}
	return models.Contact{}, fmt.Errorf("contact %s not found", id)
}

func readYes(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
