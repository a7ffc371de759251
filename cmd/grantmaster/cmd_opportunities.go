package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var opportunitiesFlags struct {
	status string
}

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "List stored grant opportunities",
	RunE:  runOpportunities,
}

func init() {
	opportunitiesCmd.Flags().StringVar(&opportunitiesFlags.status, "status", "", "Filter by status (e.g. identified, analyzed_strong_match)")
}

func runOpportunities(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opps, err := st.ListOpportunities(opportunitiesFlags.status)
	if err != nil {
		return fmt.Errorf("list opportunities: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(opps) == 0 {
		fmt.Fprintln(out, "No opportunities stored. Run 'grantmaster research' first.")
		return nil
	}

	for _, g := range opps {
		fmt.Fprintf(out, "#%d  %s\n", g.ID, g.Title)
		fmt.Fprintf(out, "    Funder:   %s\n", g.Funder)
		if g.Deadline != "" {
			fmt.Fprintf(out, "    Deadline: %s\n", g.Deadline)
		}
		fmt.Fprintf(out, "    Status:   %s\n", g.Status)
		if g.SuitabilityScore > 0 {
			fmt.Fprintf(out, "    Score:    %.1f/10\n", g.SuitabilityScore)
		}
		if g.AnalysisNotes != "" {
			fmt.Fprintf(out, "    Notes:    %s\n", g.AnalysisNotes)
		}
	}
	fmt.Fprintf(out, "%d opportunit(ies) listed\n", len(opps))
	return nil
}
