package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции и выйти",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		safeClose(conn)
		return nil
	},
}
