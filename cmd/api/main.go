package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bahnwerk/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bahnwerk",
		Short: "Bahnwerk API Server",
		Long:  `Bahnwerk tracks railway infrastructure-change tasks, their projects and reminders, and imports project registrations from spreadsheet exports.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
