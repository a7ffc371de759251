package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grantmaster/internal/flow"
	"grantmaster/internal/workflow"
)

var pipelineFlags struct {
	workflow string
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Inspect the pipeline graphs",
}

var pipelineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a pipeline definition as YAML",
	RunE:  runPipelineShow,
}

func init() {
	pipelineShowCmd.Flags().StringVar(&pipelineFlags.workflow, "workflow", "research", "Pipeline to show: research or draft")
	pipelineCmd.AddCommand(pipelineShowCmd)
}

func runPipelineShow(cmd *cobra.Command, _ []string) error {
	// Graph shape does not depend on the collaborators, so none are wired.
	p := workflow.NewPipeline(nil, nil, nil, nil, nil)

	var (
		g   *flow.Graph[workflow.State, workflow.Delta]
		err error
	)
	switch pipelineFlags.workflow {
	case "research":
		g, err = p.ResearchGraph()
	case "draft":
		g, err = p.DraftingGraph()
	default:
		return fmt.Errorf("unknown workflow %q (want research or draft)", pipelineFlags.workflow)
	}
	if err != nil {
		return fmt.Errorf("build %s graph: %w", pipelineFlags.workflow, err)
	}

	data, err := g.Definition().MarshalYAML()
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
