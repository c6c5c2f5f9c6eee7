package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/engine"
)

var rmCmd = &cobra.Command{
	Use:   "rm <partition> <key>",
	Short: "Remove an entry and its cascaded children",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		return engine.Remove(context.Background(), e, args[0], args[1])
	},
}

func init() { rootCmd.AddCommand(rmCmd) }
