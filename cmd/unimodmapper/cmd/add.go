package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
	"github.com/ChrisMcGann/UnimodMapper/pkg/reader/customcsv"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		name        string
		mass        float64
		composition string
		id          string
		sites       []string
		fromCSV     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add user defined modifications to usermod.xml",
		Long: `Append a modification to the usermod.xml overlay. Entries without --id
get a positional id ("u1", "u2", ...). When --mass is omitted it is taken
from an existing record with the same composition.

Examples:
  # Single entry valid for K and protein N-termini
  unimodmapper add --name "My label" --mass 229.162932 --composition "H(20) C(8) 13C(4) N 15N O(2)" --site K --site "N-term@Protein N-term"

  # Bulk import, one "name,mass,composition[,id]" row per entry
  unimodmapper add --from-csv labels.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromCSV != "" {
				return importCSV(cmd, a, fromCSV)
			}
			if name == "" || composition == "" {
				return fmt.Errorf("--name and --composition are required unless --from-csv is given")
			}

			comp, err := core.ParseComposition(composition)
			if err != nil {
				return err
			}

			def := core.OverlayDefinition{
				Name:        name,
				Mass:        mass,
				Composition: comp,
				ID:          id,
			}
			for _, s := range sites {
				spec, err := core.ParseSpecificity(s)
				if err != nil {
					return err
				}
				def.Specificities = append(def.Specificities, spec)
			}

			if !cmd.Flags().Changed("mass") {
				idx, err := a.mapper.Index()
				if err != nil {
					return err
				}
				known, ok := idx.CompositionToMass(comp)
				if !ok {
					return fmt.Errorf("no record with composition %s, please specify --mass", comp.Hill())
				}
				def.Mass = known
			}

			written, err := a.mapper.WriteOverlay(def)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %s, mass %g) to %s\n",
				written.Name, written.ID, written.Mass, a.mapper.OverlayPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Modification name")
	cmd.Flags().Float64Var(&mass, "mass", 0, "Monoisotopic mass")
	cmd.Flags().StringVar(&composition, "composition", "", `Elemental composition, e.g. "H(3) C(2) N O"`)
	cmd.Flags().StringVar(&id, "id", "", "Record id (default: positional u<N>)")
	cmd.Flags().StringArrayVar(&sites, "site", nil, `Specificity as SITE or SITE@POSITION, repeatable`)
	cmd.Flags().StringVar(&fromCSV, "from-csv", "", "Import entries from a CSV file")
	cmd.MarkFlagsMutuallyExclusive("from-csv", "name")
	return cmd
}

func importCSV(cmd *cobra.Command, a *app, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	defs, err := customcsv.Read(file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	written, err := a.mapper.ImportOverlay(defs)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %d modifications to %s\n", len(written), a.mapper.OverlayPath())
	return nil
}
