package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "password (prompted when omitted)")
	signupCmd.Flags().StringVar(&nameFlag, "name", "", "display name")
	signupCmd.Flags().StringVar(&passwordFlag, "password", "", "password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd, signupCmd, guestCmd, logoutCmd, whoamiCmd, resetPasswordCmd)
}

var (
	passwordFlag string
	nameFlag     string
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and load your data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}
		if err := application.Session.Login(cmd.Context(), args[0], password); err != nil {
			return err
		}
		ident := application.Session.Identity()
		fmt.Printf("Signed in as %s\n", ident.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}
		ident, err := application.Session.Signup(cmd.Context(), nameFlag, args[0], password)
		if err != nil {
			return err
		}
		if application.Confirm != nil {
			application.Confirm(ident.Email)
			fmt.Printf("Account %s created\n", ident.Email)
			return nil
		}
		fmt.Printf("Account %s created, confirm it via the email you received\n", ident.Email)
		return nil
	},
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Browse without an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Session.ContinueAsGuest(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Continuing as guest")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state := application.Session.State()
		fmt.Printf("Session: %s\n", state)
		if application.Session.Authenticated() {
			ident := application.Session.Identity()
			fmt.Printf("Email:   %s\n", ident.Email)
			if ident.Name != "" {
				fmt.Printf("Name:    %s\n", ident.Name)
			}
		}
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Session.ResetPassword(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Reset instructions sent if the account exists")
		return nil
	},
}

func resolvePassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
