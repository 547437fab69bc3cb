package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookdist/internal/calc"
	"bookdist/pkg/domain"
)

func newCalcCmd() *cobra.Command {
	var students, distribution, perCarton int
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate cartons for one subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if calc.Incomplete(students, distribution, perCarton) {
				fmt.Fprintln(out, calc.IncompleteMarker)
				return nil
			}
			res := calc.Calculate(students, distribution, perCarton)
			fmt.Fprintln(out, res.TotalLine())
			fmt.Fprintln(out, res.QuantityLine())
			fmt.Fprintln(out, res.BreakdownLine())
			return nil
		},
	}
	cmd.Flags().IntVar(&students, "students", 0, "number of students")
	cmd.Flags().IntVar(&distribution, "distribution", domain.DefaultDistribution, "distribution percentage")
	cmd.Flags().IntVar(&perCarton, "per-carton", 0, "books per carton")
	return cmd
}
