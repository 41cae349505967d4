package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tablescout version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tablescout version %s\n", tablescout.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
