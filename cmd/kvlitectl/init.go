package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite/internal/settings"
)

var initConnString string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings.Default()
		s.ConnectionString = initConnString
		if err := s.Validate(); err != nil {
			return err
		}
		if err := settings.Save(configPath, s); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initConnString, "conn", "kvlite.db", "connection string for the backend")
	rootCmd.AddCommand(initCmd)
}
