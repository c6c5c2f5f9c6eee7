package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/engine"
)

var peekCmd = &cobra.Command{
	Use:   "peek <partition> <key>",
	Short: "Read an entry without renewing it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		v, found, err := engine.Peek[string](context.Background(), e, args[0], args[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("kvlitectl: not found")
		}
		fmt.Println(v)
		return nil
	},
}

func init() { rootCmd.AddCommand(peekCmd) }
