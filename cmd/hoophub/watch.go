package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
	"github.com/EliaCinti/HoopHub-sub002/internal/ui"
	"github.com/EliaCinti/HoopHub-sub002/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the file backend for out-of-band edits",
	Long: `Run the file watcher daemon.

Record files created, modified or removed outside the application (hand
edits, external tooling) are detected and replayed into the SQLite master,
keeping the two backends consistent without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderErr("Error:"), err)
			os.Exit(1)
		}
		defer a.Close()

		dirs := map[string]storage.Kind{
			filepath.Join(a.cfg.DataDir, "players"):       storage.KindPlayer,
			filepath.Join(a.cfg.DataDir, "organizers"):    storage.KindOrganizer,
			filepath.Join(a.cfg.DataDir, "venues"):        storage.KindVenue,
			filepath.Join(a.cfg.DataDir, "bookings"):      storage.KindBooking,
			filepath.Join(a.cfg.DataDir, "notifications"): storage.KindNotification,
		}

		daemonCfg := watch.DefaultConfig()
		daemonCfg.Logger = a.cfg.Logger("[watch] ")

		daemon, err := watch.NewDaemon(a.facade, dirs, daemonCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s failed to create watcher: %v\n", ui.RenderErr("✗"), err)
			os.Exit(1)
		}

		fmt.Printf("%s Watching %s (Ctrl-C to stop)\n", ui.RenderAccent("👁"), a.cfg.DataDir)
		if err := daemon.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderErr("Error:"), err)
			os.Exit(1)
		}
		fmt.Printf("%s Watcher stopped\n", ui.RenderPass("✓"))
	},
}
