package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/valuator/api/internal/handlers"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build and API versions",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "valuator %s (api %s)\n", version, handlers.APIVersion)
	},
}
