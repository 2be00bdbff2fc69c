package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mcpanel/internal/lifecycle"
	"mcpanel/internal/ports"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List managed servers",
	Run: func(cmd *cobra.Command, args []string) {
		handleListServers()
	},
}

var (
	startNewPort         string
	startStopConflicting bool
)

var startCmd = &cobra.Command{
	Use:   "start <server-id>",
	Short: "Start a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleStart(args[0])
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <server-id>",
	Short: "Stop a server gracefully",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleLifecycle(args[0], func(ctx context.Context, ctrl *lifecycle.Controller, id string) error {
			return ctrl.Stop(ctx, id)
		})
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <server-id>",
	Short: "Restart a running server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleLifecycle(args[0], func(ctx context.Context, ctrl *lifecycle.Controller, id string) error {
			return ctrl.Restart(ctx, id)
		})
	},
}

var forceStopCmd = &cobra.Command{
	Use:   "force-stop <server-id>",
	Short: "Kill a server without graceful shutdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleLifecycle(args[0], func(ctx context.Context, ctrl *lifecycle.Controller, id string) error {
			return ctrl.ForceStop(ctx, id)
		})
	},
}

func init() {
	startCmd.Flags().StringVar(&startNewPort, "new-port", "", "resolve a port conflict by moving this server to the given port")
	startCmd.Flags().BoolVar(&startStopConflicting, "stop-conflicting", false, "resolve a port conflict by stopping the conflicting server")

	RootCmd.AddCommand(serversCmd, startCmd, stopCmd, restartCmd, forceStopCmd)
}

func newController(ctx context.Context) *lifecycle.Controller {
	ctrl := lifecycle.NewController(Client)
	if err := ctrl.Refresh(ctx); err != nil {
		log.Fatalf("Error fetching servers: %v", err)
	}
	return ctrl
}

func handleListServers() {
	ctx := context.Background()
	ctrl := newController(ctx)

	fmt.Println("\n--- SERVERS ---")
	for _, s := range ctrl.Servers() {
		fmt.Printf("%-20s %-10s port %-6s %d/%d players  %s\n",
			s.Name, s.Status, s.Port, s.Players.Online, s.Players.Max, s.ID)
	}
}

func handleStart(id string) {
	ctx := context.Background()
	ctrl := newController(ctx)

	conflict, err := ctrl.Start(ctx, id)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
	if conflict == nil {
		fmt.Println("Start command sent.")
		return
	}

	fmt.Printf("Port conflict: %s is already running on port %s.\n",
		conflict.Conflicting.Name, conflict.Conflicting.Port)

	resolver := ports.NewResolver(ctrl)
	switch {
	case startNewPort != "":
		if err := resolver.ChangePort(ctx, *conflict, startNewPort); err != nil {
			log.Fatalf("Error resolving conflict: %v", err)
		}
		fmt.Printf("Moved %s to port %s and started it.\n", conflict.Current.Name, startNewPort)
	case startStopConflicting:
		if err := resolver.StopConflicting(ctx, *conflict); err != nil {
			log.Fatalf("Error resolving conflict: %v", err)
		}
		fmt.Printf("Stopped %s and started %s.\n", conflict.Conflicting.Name, conflict.Current.Name)
	default:
		log.Fatalf("Re-run with --new-port=<port> or --stop-conflicting to resolve the conflict")
	}
}

func handleLifecycle(id string, op func(context.Context, *lifecycle.Controller, string) error) {
	ctx := context.Background()
	ctrl := newController(ctx)

	if err := op(ctx, ctrl, id); err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Println("Command sent.")
}
