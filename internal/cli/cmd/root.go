package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcpanel/internal/cli/ui"
	"mcpanel/pkg/sdk"
)

var (
	Client  *sdk.Client
	BaseURL string
)

var RootCmd = &cobra.Command{
	Use:   "mcpanel-cli",
	Short: "Terminal client for the mcpanel daemon",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Client = sdk.NewClient(BaseURL)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runDashboardLoop()
	},
}

// runDashboardLoop cycles between the server list and the console view until
// the user quits from either.
func runDashboardLoop() {
	for {
		id := ui.RunDashboard(Client)
		if id == "" {
			return
		}
		if back := ui.RunConsole(Client, id); !back {
			return
		}
	}
}

func Execute(defaultURL string) {
	RootCmd.PersistentFlags().StringVar(&BaseURL, "url", defaultURL, "URL of the mcpanel daemon")

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
