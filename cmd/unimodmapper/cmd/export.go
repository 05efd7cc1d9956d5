package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/UnimodMapper/pkg/writer/sqlite"
)

func newExportCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all modification records to a SQLite database",
		Long: `Write every record of unimod.xml, usermod.xml and any extra files to a
SQLite database, keyed by record position.

Example:
  unimodmapper export --out unimod.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(outputFile); err == nil {
				return fmt.Errorf("output file already exists: %s", outputFile)
			}

			idx, err := a.mapper.Index()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exporting %d modifications to %s...\n", idx.Len(), outputFile)
			if err := sqlite.Export(outputFile, idx.Records()); err != nil {
				return fmt.Errorf("failed to export database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export complete!\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	cmd.MarkFlagRequired("out")
	return cmd
}
