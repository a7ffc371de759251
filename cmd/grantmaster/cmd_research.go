package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grantmaster/internal/config"
	"grantmaster/internal/workflow"
)

var researchFlags struct {
	siteURL  string
	username string
}

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Log in to the grant portal, extract opportunities, and score them",
	Long:  "Runs the research pipeline: authenticate against the portal, extract grant\nopportunities from the page, and score each one against the saved\norganization profile. The portal password comes from " + config.EnvPortalPassword + ".",
	RunE:  runResearch,
}

func init() {
	f := researchCmd.Flags()
	f.StringVar(&researchFlags.siteURL, "site-url", "", "Grant portal URL (default: config portal.url)")
	f.StringVar(&researchFlags.username, "username", "", "Portal username (default: config portal.username)")
}

func runResearch(cmd *cobra.Command, _ []string) error {
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

	siteURL := researchFlags.siteURL
	if siteURL == "" {
		siteURL = cfg.Portal.URL
	}
	username := researchFlags.username
	if username == "" {
		username = cfg.Portal.Username
	}

	p, err := buildPipeline(st)
	if err != nil {
		return err
	}

	final, err := p.RunResearch(cmd.Context(), profile, siteURL, workflow.Credentials{
		Username: username,
		Password: cfg.Portal.Password,
	})
	if err != nil {
		return fmt.Errorf("research pipeline: %w", err)
	}

	out := cmd.OutOrStdout()
	processed, failed := 0, 0
	for _, o := range final.Opportunities {
		if o.Failure == "" {
			processed++
		} else {
			failed++
		}
	}
	fmt.Fprintf(out, "Research complete: %d opportunities processed, %d had issues\n", processed, failed)
	printTrace(cmd, final.Log)

	if final.Err != "" {
		return fmt.Errorf("research failed: %s", final.Err)
	}
	return nil
}
