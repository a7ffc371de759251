package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sectionsFlags struct {
	grantID int64
	section string
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Show the latest saved draft of each section for a grant",
	RunE:  runSections,
}

func init() {
	f := sectionsCmd.Flags()
	f.Int64Var(&sectionsFlags.grantID, "grant-id", 0, "Stored grant opportunity ID (required)")
	f.StringVar(&sectionsFlags.section, "section", "", "Show only this section")

	_ = sectionsCmd.MarkFlagRequired("grant-id")
}

func runSections(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if sectionsFlags.section != "" {
		d, err := st.GetLatestSectionDraft(sectionsFlags.grantID, sectionsFlags.section)
		if err != nil {
			return fmt.Errorf("load section: %w", err)
		}
		if d == nil {
			fmt.Fprintf(out, "No draft saved for section %q of grant %d\n", sectionsFlags.section, sectionsFlags.grantID)
			return nil
		}
		fmt.Fprintf(out, "%s (version %d)\n\n%s\n", d.SectionName, d.Version, d.DraftContent)
		if d.Feedback != "" {
			fmt.Fprintf(out, "\nReviewer feedback:\n%s\n", d.Feedback)
		}
		return nil
	}

	sections, err := st.ListLatestSections(sectionsFlags.grantID)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	if len(sections) == 0 {
		fmt.Fprintf(out, "No sections drafted for grant %d. Run 'grantmaster draft' first.\n", sectionsFlags.grantID)
		return nil
	}
	for _, d := range sections {
		fmt.Fprintf(out, "%s (version %d)\n", d.SectionName, d.Version)
	}
	fmt.Fprintf(out, "%d section(s); use --section to print a draft\n", len(sections))
	return nil
}
