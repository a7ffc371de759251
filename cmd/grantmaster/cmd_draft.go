package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var draftFlags struct {
	grantID      int64
	section      string
	instructions string
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft one application section through the write/review loop",
	RunE:  runDraft,
}

func init() {
	f := draftCmd.Flags()
	f.Int64Var(&draftFlags.grantID, "grant-id", 0, "Stored grant opportunity ID (required)")
	f.StringVar(&draftFlags.section, "section", "", "Section name, e.g. 'Statement of Need' (required)")
	f.StringVar(&draftFlags.instructions, "instructions", "", "Extra drafting guidance")

	_ = draftCmd.MarkFlagRequired("grant-id")
	_ = draftCmd.MarkFlagRequired("section")
}

func runDraft(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	profile, err := st.GetProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("no organization profile saved; run 'grantmaster profile set' first")
	}

	grant, err := st.GetOpportunity(draftFlags.grantID)
	if err != nil {
		return fmt.Errorf("load grant: %w", err)
	}
	if grant == nil {
		return fmt.Errorf("grant %d not found; run 'grantmaster opportunities' to list ids", draftFlags.grantID)
	}

	p, err := buildPipeline(st)
	if err != nil {
		return err
	}

	final, err := p.RunDraftSection(cmd.Context(), profile, grant, draftFlags.section, draftFlags.instructions)
	if err != nil {
		return fmt.Errorf("drafting pipeline: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Section %q for %q: %d draft iteration(s)\n", draftFlags.section, grant.Title, final.Iterations)
	printTrace(cmd, final.Log)

	if final.Err != "" {
		return fmt.Errorf("drafting failed: %s", final.Err)
	}

	fmt.Fprintln(out, "\nFinal draft:")
	fmt.Fprintln(out, final.Draft)
	if final.Feedback != "" {
		fmt.Fprintln(out, "\nReviewer feedback:")
		fmt.Fprintln(out, final.Feedback)
	}
	return nil
}
