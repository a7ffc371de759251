package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"grantmaster/internal/store"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the organization profile",
}

var profileSetFlags struct {
	name         string
	mission      string
	projects     string
	needs        string
	demographics string
	file         string
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the organization profile (replaces any existing one)",
	RunE:  runProfileSet,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved organization profile",
	RunE:  runProfileShow,
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileSetFlags.name, "name", "", "Organization name")
	f.StringVar(&profileSetFlags.mission, "mission", "", "Mission statement")
	f.StringVar(&profileSetFlags.projects, "projects", "", "Current projects")
	f.StringVar(&profileSetFlags.needs, "needs", "", "Funding needs")
	f.StringVar(&profileSetFlags.demographics, "demographics", "", "Target demographics")
	f.StringVar(&profileSetFlags.file, "file", "", "YAML file with the profile (flags override file values)")

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
}

// profileDoc is the YAML shape accepted by `profile set --file`.
type profileDoc struct {
	Name               string `yaml:"name"`
	Mission            string `yaml:"mission"`
	Projects           string `yaml:"projects"`
	Needs              string `yaml:"needs"`
	TargetDemographics string `yaml:"target_demographics"`
}

func runProfileSet(cmd *cobra.Command, _ []string) error {
	var doc profileDoc
	if profileSetFlags.file != "" {
		data, err := os.ReadFile(profileSetFlags.file)
		if err != nil {
			return fmt.Errorf("read profile file: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse profile file: %w", err)
		}
	}
	if profileSetFlags.name != "" {
		doc.Name = profileSetFlags.name
	}
	if profileSetFlags.mission != "" {
		doc.Mission = profileSetFlags.mission
	}
	if profileSetFlags.projects != "" {
		doc.Projects = profileSetFlags.projects
	}
	if profileSetFlags.needs != "" {
		doc.Needs = profileSetFlags.needs
	}
	if profileSetFlags.demographics != "" {
		doc.TargetDemographics = profileSetFlags.demographics
	}
	if doc.Name == "" {
		return fmt.Errorf("organization name is required (--name or --file)")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveProfile(&store.OrganizationProfile{
		Name:               doc.Name,
		Mission:            doc.Mission,
		Projects:           doc.Projects,
		Needs:              doc.Needs,
		TargetDemographics: doc.TargetDemographics,
	}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profile saved for %q\n", doc.Name)
	return nil
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.GetProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	out := cmd.OutOrStdout()
	if p == nil {
		fmt.Fprintln(out, "No profile saved. Run 'grantmaster profile set' first.")
		return nil
	}

	fmt.Fprintf(out, "Name:                %s\n", p.Name)
	fmt.Fprintf(out, "Mission:             %s\n", p.Mission)
	fmt.Fprintf(out, "Projects:            %s\n", p.Projects)
	fmt.Fprintf(out, "Needs:               %s\n", p.Needs)
	fmt.Fprintf(out, "Target demographics: %s\n", p.TargetDemographics)
	return nil
}
