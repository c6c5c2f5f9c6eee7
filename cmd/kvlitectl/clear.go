package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/engine"
)

var clearPartition string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry, optionally scoped to one partition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		var partition *string
		if clearPartition != "" {
			partition = &clearPartition
		}
		n, err := engine.Clear(context.Background(), e, partition, engine.IgnoreExpiry)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d entries\n", n)
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVar(&clearPartition, "partition", "", "limit to one partition")
	rootCmd.AddCommand(clearCmd)
}
