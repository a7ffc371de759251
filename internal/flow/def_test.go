package flow

import (
	"context"
	"strings"
	"testing"
)

const sampleDef = `
pipeline: research
description: login, extract, score
nodes:
  - name: login
  - name: extract
  - name: score
  - name: handle_error
edges:
  - from: login
    to: extract
  - from: login
    to: handle_error
  - from: extract
    to: score
  - from: score
    to: _done
  - from: handle_error
    to: _done
start: login
done: _done
`

func TestLoadDefinition_RoundTrip(t *testing.T) {
	def, err := LoadDefinition([]byte(sampleDef))
	if err != nil {
		t.Fatalf("LoadDefinition: %v", err)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	out, err := def.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	def2, err := LoadDefinition(out)
	if err != nil {
		t.Fatalf("LoadDefinition(round trip): %v", err)
	}
	if def2.Pipeline != def.Pipeline || len(def2.Nodes) != len(def.Nodes) || len(def2.Edges) != len(def.Edges) {
		t.Errorf("round trip changed shape: %+v vs %+v", def, def2)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Definition)
		want   string
	}{
		{"empty name", func(d *Definition) { d.Pipeline = "" }, "pipeline name"},
		{"no nodes", func(d *Definition) { d.Nodes = nil }, "at least one node"},
		{"no edges", func(d *Definition) { d.Edges = nil }, "at least one edge"},
		{"missing start", func(d *Definition) { d.Start = "ghost" }, "start node"},
		{"dangling edge", func(d *Definition) { d.Edges[0].To = "ghost" }, "unknown target"},
		{"duplicate node", func(d *Definition) { d.Nodes = append(d.Nodes, NodeDef{Name: "login"}) }, "duplicate node"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := LoadDefinition([]byte(sampleDef))
			if err != nil {
				t.Fatalf("LoadDefinition: %v", err)
			}
			tc.mutate(def)
			err = def.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestGraphDefinition_Exports(t *testing.T) {
	g, err := New("sample", "a",
		[]Node[counterState, counterDelta]{visit("a"), visit("b")},
		[]Route[counterState]{
			{From: "a", Targets: []NodeID{"b", Done}, Pick: func(s counterState) NodeID {
				if s.Failed {
					return Done
				}
				return "b"
			}},
			fixed("b", Done),
		},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	def := g.Definition()
	if err := def.Validate(); err != nil {
		t.Fatalf("exported definition invalid: %v", err)
	}
	if def.Start != "a" || len(def.Nodes) != 2 || len(def.Edges) != 3 {
		t.Errorf("unexpected definition shape: %+v", def)
	}

	// Exported definition must describe the graph the engine actually walks.
	final, err := g.Run(context.Background(), counterState{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(final.Trail) != 2 {
		t.Errorf("trail = %v, want both nodes visited", final.Trail)
	}
}
