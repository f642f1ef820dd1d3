package units

import (
	"fmt"

	"github.com/zjrosen/govkit/internal/domain/unit"
	"github.com/zjrosen/govkit/internal/log"
)

// GraphResult is the outcome of dependency-graph verification.
type GraphResult struct {
	Nodes    int
	Edges    int
	Cycle    unit.CycleReport
	Messages []string
}

// Passed reports whether the graph is acyclic.
func (r *GraphResult) Passed() bool {
	return !r.Cycle.Found()
}

// Err returns nil for an acyclic graph or an error wrapping both
// ErrGraphVerificationFailed and unit.ErrCycleDetected.
func (r *GraphResult) Err() error {
	if r.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrGraphVerificationFailed, r.Cycle.Err())
}

// AnalyzeGraph builds the dependency graph over units and runs cycle detection.
func AnalyzeGraph(units map[string]*unit.Declaration) *GraphResult {
	g := unit.BuildGraph(units)
	cycle := unit.DetectCycle(g)

	res := &GraphResult{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
		Cycle: cycle,
	}
	if cycle.Found() {
		res.Messages = append(res.Messages, "Cycle detected: "+cycle.String())
		log.Warn(log.CatGraph, "cycle detected", "path", cycle.String())
	}
	log.Debug(log.CatGraph, "graph analysed", "nodes", res.Nodes, "edges", res.Edges)
	return res
}
