package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grantmaster/internal/store"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage reusable section templates",
}

var templateAddFlags struct {
	name        string
	content     string
	contentFile string
	notes       string
}

var templateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a section template",
	RunE:  runTemplateAdd,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored section templates",
	RunE:  runTemplateList,
}

func init() {
	f := templateAddCmd.Flags()
	f.StringVar(&templateAddFlags.name, "name", "", "Template name (required)")
	f.StringVar(&templateAddFlags.content, "content", "", "Template text")
	f.StringVar(&templateAddFlags.contentFile, "content-file", "", "Read template text from a file")
	f.StringVar(&templateAddFlags.notes, "notes", "", "Usage notes")

	_ = templateAddCmd.MarkFlagRequired("name")

	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateListCmd)
}

func runTemplateAdd(cmd *cobra.Command, _ []string) error {
	content := templateAddFlags.content
	if templateAddFlags.contentFile != "" {
		data, err := os.ReadFile(templateAddFlags.contentFile)
		if err != nil {
			return fmt.Errorf("read template file: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return fmt.Errorf("template content is required (--content or --content-file)")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.SaveTemplate(&store.Template{
		Name:       templateAddFlags.name,
		Content:    content,
		UsageNotes: templateAddFlags.notes,
	})
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Template %q saved with id %d\n", templateAddFlags.name, id)
	return nil
}

func runTemplateList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	templates, err := st.ListTemplates()
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(templates) == 0 {
		fmt.Fprintln(out, "No templates stored.")
		return nil
	}
	for _, t := range templates {
		fmt.Fprintf(out, "#%d  %s\n", t.ID, t.Name)
		if t.UsageNotes != "" {
			fmt.Fprintf(out, "    Notes: %s\n", t.UsageNotes)
		}
	}
	return nil
}
