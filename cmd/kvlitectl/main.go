// Command kvlitectl is a small operator CLI over the cache engine: it
// opens the backend named by a settings file and runs one operation per
// invocation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	driverName string
)

var rootCmd = &cobra.Command{
	Use:   "kvlitectl",
	Short: "Operate a kvlite cache from the command line",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "kvlite.yaml", "path to the settings file")
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "sqlite", "backend driver: sqlite, mysql, or dolt")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
