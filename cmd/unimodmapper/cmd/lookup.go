package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
	"github.com/ChrisMcGann/UnimodMapper/pkg/mapper"
)

// toSpecificity is only valid as a lookup target
const toSpecificity = "specificity"

func newLookupCmd(a *app) *cobra.Command {
	var from, to string
	var first bool

	cmd := &cobra.Command{
		Use:   "lookup KEY",
		Short: "Look up modifications by name, id, mass or composition",
		Long: `Print one attribute of every record matching KEY, in unimod order.

Examples:
  # Mass of Oxidation
  unimodmapper lookup --from name --to mass Oxidation

  # Names sharing a composition
  unimodmapper lookup --from composition --to name "H(-2) O(-1)"

  # Only the first record with a given mass
  unimodmapper lookup --from mass --to name --first -- -18.010565`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromAxis, err := mapper.ParseAxis(from)
			if err != nil {
				return err
			}
			if !strings.EqualFold(to, toSpecificity) {
				if _, err := mapper.ParseAxis(to); err != nil {
					return err
				}
			}

			idx, err := a.mapper.Index()
			if err != nil {
				return err
			}

			positions, err := idx.Positions(fromAxis, args[0])
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				return fmt.Errorf("no modification with %s '%s'", fromAxis, args[0])
			}
			if first {
				positions = positions[:1]
			}

			out := cmd.OutOrStdout()
			for _, p := range positions {
				printAttribute(out, idx.Record(p), strings.ToLower(to))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "name", "Key axis: name, id, mass, composition")
	cmd.Flags().StringVar(&to, "to", "id", "Output: name, id, mass, composition, specificity")
	cmd.Flags().BoolVar(&first, "first", false, "Only print the first matching record")
	return cmd
}

func printAttribute(w io.Writer, mod core.Modification, to string) {
	switch to {
	case string(mapper.AxisName):
		fmt.Fprintln(w, mod.Name)
	case string(mapper.AxisID):
		fmt.Fprintln(w, mod.ID)
	case string(mapper.AxisMass):
		fmt.Fprintln(w, strconv.FormatFloat(mod.MonoMass, 'f', -1, 64))
	case string(mapper.AxisComposition), "element":
		fmt.Fprintln(w, mod.Composition.Hill())
	case toSpecificity:
		sites := make([]string, len(mod.Specificities))
		for i, spec := range mod.Specificities {
			sites[i] = spec.Site + "@" + spec.Position
		}
		fmt.Fprintln(w, strings.Join(sites, ","))
	}
}

func newApproxCmd(a *app) *cobra.Command {
	var decimals int

	cmd := &cobra.Command{
		Use:   "approx MASS",
		Short: "Find modifications whose rounded mass matches",
		Long: `Round every record mass and MASS to --decimals places and print the
matching records as name, id and composition.

Example:
  unimodmapper approx --decimals 0 -- -18`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mass, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid mass '%s': %w", args[0], err)
			}
			if decimals < 0 {
				return fmt.Errorf("--decimals must be non-negative, got %d", decimals)
			}

			idx, err := a.mapper.Index()
			if err != nil {
				return err
			}

			names := idx.ApproxMassToNameList(mass, decimals)
			ids := idx.ApproxMassToIDList(mass, decimals)
			comps := idx.ApproxMassToCompositionList(mass, decimals)

			out := cmd.OutOrStdout()
			for i := range names {
				fmt.Fprintf(out, "%s\t%s\t%s\n", names[i], ids[i], comps[i].Hill())
			}
			if len(names) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "No modification within %d decimals of %s\n", decimals, args[0])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&decimals, "decimals", 2, "Decimal places to round to")
	return cmd
}
