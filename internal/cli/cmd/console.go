package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mcpanel/internal/cli/ui"
)

var consoleCmd = &cobra.Command{
	Use:   "console <server-id>",
	Short: "Attach a live console to a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if back := ui.RunConsole(Client, args[0]); back {
			runDashboardLoop()
		}
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <server-id>",
	Short: "Show recent console commands sent through the panel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := Client.GetCommandHistory(context.Background(), args[0], historyLimit)
		if err != nil {
			log.Fatalf("Error fetching history: %v", err)
		}
		for _, rec := range records {
			fmt.Printf("%s  %s\n", rec.CreatedAt, rec.Command)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum entries to show")
	RootCmd.AddCommand(consoleCmd, historyCmd)
}
