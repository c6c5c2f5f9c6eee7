package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/engine"
)

var (
	putSliding time.Duration
	putTimed   string
	putParents []string
)

var putCmd = &cobra.Command{
	Use:   "put <partition> <key> <value>",
	Short: "Add or replace an entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		partition, key, value := args[0], args[1], args[2]
		ctx := context.Background()

		switch {
		case putTimed != "":
			expiry, err := time.Parse(time.RFC3339, putTimed)
			if err != nil {
				return fmt.Errorf("kvlitectl: parsing --timed: %w", err)
			}
			return engine.AddTimed(ctx, e, partition, key, value, expiry, putParents...)
		case putSliding > 0:
			return engine.AddSliding(ctx, e, partition, key, value, putSliding, putParents...)
		default:
			return engine.AddStatic(ctx, e, partition, key, value, putParents...)
		}
	},
}

func init() {
	putCmd.Flags().DurationVar(&putSliding, "sliding", 0, "sliding interval, e.g. 10m")
	putCmd.Flags().StringVar(&putTimed, "timed", "", "absolute RFC3339 expiry, e.g. 2026-01-01T00:00:00Z")
	putCmd.Flags().StringSliceVar(&putParents, "parent", nil, "parent key (repeatable, up to 5)")
	rootCmd.AddCommand(putCmd)
}
