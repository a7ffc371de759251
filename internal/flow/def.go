package flow

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative YAML form of a pipeline graph. It exists for
// inspection tooling (`pipeline show`) and for validating that a built graph
// matches its published shape; execution always goes through Graph.
type Definition struct {
	Pipeline    string    `yaml:"pipeline"`
	Description string    `yaml:"description,omitempty"`
	Nodes       []NodeDef `yaml:"nodes"`
	Edges       []EdgeDef `yaml:"edges"`
	Start       string    `yaml:"start"`
	Done        string    `yaml:"done"`
}

// NodeDef declares a node in the pipeline.
type NodeDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// EdgeDef declares a possible transition between two nodes.
type EdgeDef struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Loop      bool   `yaml:"loop,omitempty"`
	Condition string `yaml:"condition,omitempty"`
}

// LoadDefinition parses a YAML pipeline definition.
func LoadDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse pipeline YAML: %w", err)
	}
	return &def, nil
}

// MarshalYAML serializes a Definition back to YAML.
func (def *Definition) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(def)
}

// Validate checks referential integrity of the definition:
//   - pipeline name, start and done markers are non-empty
//   - at least one node and one edge exist
//   - node names are unique; start exists in the node list
//   - all edge endpoints reference existing nodes (or the done marker)
func (def *Definition) Validate() error {
	if def.Pipeline == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if len(def.Nodes) == 0 {
		return fmt.Errorf("at least one node is required")
	}
	if len(def.Edges) == 0 {
		return fmt.Errorf("at least one edge is required")
	}
	if def.Start == "" {
		return fmt.Errorf("start node is required")
	}
	if def.Done == "" {
		return fmt.Errorf("done marker is required")
	}

	nodeSet := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		if n.Name == "" {
			return fmt.Errorf("node name is required")
		}
		if nodeSet[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		nodeSet[n.Name] = true
	}

	if !nodeSet[def.Start] {
		return fmt.Errorf("start node %q not found in node list", def.Start)
	}

	for _, e := range def.Edges {
		if !nodeSet[e.From] {
			return fmt.Errorf("edge %s->%s references unknown source node", e.From, e.To)
		}
		if e.To != def.Done && !nodeSet[e.To] {
			return fmt.Errorf("edge %s->%s references unknown target node", e.From, e.To)
		}
	}
	return nil
}

// Definition exports the graph's shape as a Definition: one NodeDef per
// registered node and one EdgeDef per declared route target.
func (g *Graph[S, D]) Definition() *Definition {
	def := &Definition{
		Pipeline: g.name,
		Start:    string(g.entry),
		Done:     string(Done),
	}
	for _, id := range g.order {
		def.Nodes = append(def.Nodes, NodeDef{Name: string(id)})
		r := g.routes[id]
		for _, t := range r.Targets {
			def.Edges = append(def.Edges, EdgeDef{From: string(id), To: string(t)})
		}
	}
	return def
}
