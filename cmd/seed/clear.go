package main

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every row from every table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()

		st, err := openStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		tables, err := st.Clear(cmd.Context())
		if err != nil {
			return err
		}

		log.Info("Cleared database", "tables", tables)
		return nil
	},
}
