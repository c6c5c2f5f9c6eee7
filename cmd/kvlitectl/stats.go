package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/engine"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report entry count and estimated cache size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := context.Background()
		n, err := engine.LongCount(ctx, e, nil, engine.ConsiderExpiry)
		if err != nil {
			return err
		}
		size, err := engine.CacheSizeInBytes(ctx, e)
		if err != nil {
			return err
		}
		fmt.Printf("entries: %d\nsize_bytes: %d\n", n, size)
		return nil
	},
}

func init() { rootCmd.AddCommand(statsCmd) }
