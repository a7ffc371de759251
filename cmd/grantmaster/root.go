package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grantmaster/internal/agents"
	"grantmaster/internal/config"
	"grantmaster/internal/logging"
	"grantmaster/internal/store"
	"grantmaster/internal/workflow"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config   string
	db       string
	logLevel string
}

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "grantmaster",
	Short: "Grant research and proposal drafting pipelines",
	Long:  "GrantMaster researches funding opportunities on grant portals, scores them\nagainst your organization profile, and drafts application sections through\nan automated write/review loop.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(rootFlags.config)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if rootFlags.logLevel != "" {
			level = rootFlags.logLevel
		}
		logging.Init(logging.ParseLevel(level), cfg.Logging.Format)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", ".grantmaster/config.yaml", "Path to the config file")
	pf.StringVar(&rootFlags.db, "db", "", "Path to the SQLite database (overrides config)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(opportunitiesCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func openStore() (*store.SqlStore, error) {
	path := cfg.Database.Path
	if rootFlags.db != "" {
		path = rootFlags.db
	}
	return store.Open(path)
}

// buildPipeline wires the real collaborators. Commands that never talk to the
// LLM or the browser should use openStore directly instead.
func buildPipeline(st store.Store) (*workflow.Pipeline, error) {
	llm, err := agents.NewOpenAILLM(&agents.LLMSettings{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	sleuth := agents.NewSleuth(llm)
	return workflow.NewPipeline(st, sleuth, agents.NewAnalyst(llm), agents.NewWriter(llm), agents.NewEditor(llm)), nil
}

func printTrace(cmd *cobra.Command, log []string) {
	if len(log) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Trace:")
	for _, line := range log {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", line)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
