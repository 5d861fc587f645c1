package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const passwordEnv = "CONTACTTERM_PASSWORD"

var (
	flagEmail    string
	flagPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		if err := env.controller.Login(cmd.Context(), flagEmail, password); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in. %d contacts.\n", len(env.contacts.Contacts()))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		outcome, err := env.controller.Register(cmd.Context(), flagEmail, password)
		if err != nil {
			return err
		}

		if outcome.LoggedIn {
			fmt.Fprintln(cmd.OutOrStdout(), "Account created and logged in.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run 'contactterm login' to continue.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.controller.Exit(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVar(&flagEmail, "email", "", "account email")
		cmd.Flags().StringVar(&flagPassword, "password", "", "account password (or set "+passwordEnv+")")
		_ = cmd.MarkFlagRequired("email")
	}
}

func resolvePassword() (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}
	if password := os.Getenv(passwordEnv); password != "" {
		return password, nil
	}
	return "", errors.New("password required: pass --password or set " + passwordEnv)
}
