package flow

import "errors"

var (
	// ErrNodeNotFound is returned when a referenced node does not exist in the graph.
	ErrNodeNotFound = errors.New("flow: node not found")

	// ErrNoRoute is returned when a router picks a target that was not declared
	// in its transition table, indicating a graph definition gap.
	ErrNoRoute = errors.New("flow: router picked an undeclared target")

	// ErrStepLimit is returned when a walk exceeds the step cap, which means a
	// routing cycle is not converging.
	ErrStepLimit = errors.New("flow: step limit exceeded")
)
