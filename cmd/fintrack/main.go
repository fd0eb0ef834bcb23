package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fintrack/internal/app"
	"fintrack/internal/config"
)

var application *app.App

var rootCmd = &cobra.Command{
	Use:           "fintrack",
	Short:         "Track income and expenses against a fintrack backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments configure the environment.
		_ = godotenv.Load()

		a, err := app.New(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		if err := a.Start(cmd.Context()); err != nil {
			a.Close()
			return err
		}
		application = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
