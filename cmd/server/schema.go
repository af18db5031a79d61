package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/valuator/api/internal/database"
	"github.com/stwalsh4118/valuator/api/internal/models"
)

var schemaSQL bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the property column table",
	Long:  "Lists every column of valuator_data with its block, kind and accepted form alias. With --sql, prints the CREATE TABLE statement instead.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaSQL {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), database.PropertySchema()+";")
			return err
		}
		return writeColumns(cmd.OutOrStdout())
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaSQL, "sql", false, "print the CREATE TABLE statement")
}

func writeColumns(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tBLOCK\tKIND\tALIAS")
	for _, col := range models.RecordColumns() {
		alias := col.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", col.Name, col.Role, col.Kind, alias)
	}
	return w.Flush()
}
