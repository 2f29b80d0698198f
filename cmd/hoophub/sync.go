package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	syncx "github.com/EliaCinti/HoopHub-sub002/internal/sync"
	"github.com/EliaCinti/HoopHub-sub002/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the file backend from the SQLite master",
	Long: `Run the bootstrap reconciliation on demand.

This wipes the file backend and repopulates it from the SQLite master in
dependency order: players, organizers, venues, bookings, notifications.
If the master is unreachable the file backend is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		a, err := openApp(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderErr("Error:"), err)
			os.Exit(1)
		}
		defer a.Close()

		fmt.Printf("%s Rebuilding %s from sqlite...\n", ui.RenderAccent("🔄"), a.cfg.DataDir)
		start := time.Now()

		bootstrap := syncx.NewBootstrap(a.facade, a.cfg.Logger("[bootstrap] "))
		if err := bootstrap.Run(ctx, a.facade.Active()); err != nil {
			fmt.Fprintf(os.Stderr, "%s sync failed: %v\n", ui.RenderErr("✗"), err)
			os.Exit(1)
		}

		elapsed := time.Since(start)
		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), elapsed.Round(time.Millisecond))
	},
}
