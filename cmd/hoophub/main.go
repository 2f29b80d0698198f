// Command hoophub manages the HoopHub dual-persistence data layer: it runs
// the startup reconciliation, reports backend contents and watches the file
// backend for out-of-band edits.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EliaCinti/HoopHub-sub002/internal/ui"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hoophub",
	Short: "HoopHub cross-persistence sync tooling",
	Long: `Manage the HoopHub storage layer.

HoopHub keeps two independently addressable stores consistent: a SQLite
database (the master) and a directory of JSON record files. Mutations on
either side replicate to the other in real time; 'hoophub sync' rebuilds
the file side from the master on demand.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderErr("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default hoophub.yaml)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}
