package unit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycleDetected is wrapped by CycleReport.Err when a cycle was found.
var ErrCycleDetected = errors.New("cycle detected")

// CycleReport is the outcome of DetectCycle. Path is empty when the graph is
// acyclic; otherwise it starts and ends with the same identifier.
type CycleReport struct {
	Path []string
}

// Found reports whether a cycle was detected.
func (r CycleReport) Found() bool {
	return len(r.Path) > 0
}

// String renders the cycle as "A -> B -> A".
func (r CycleReport) String() string {
	return strings.Join(r.Path, " -> ")
}

// Err returns nil for an acyclic graph, or an error wrapping ErrCycleDetected.
func (r CycleReport) Err() error {
	if !r.Found() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCycleDetected, r)
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// frame is one level of the explicit DFS stack.
type frame struct {
	id   string
	next int // index of the next dependency to examine
}

// DetectCycle performs a three-colour depth-first search over g and returns
// the first cycle closed. Start nodes are taken in sorted order so the result
// is deterministic. Dependencies without a node are skipped.
//
// The walk uses an explicit stack, so arbitrarily deep chains cannot exhaust
// the goroutine stack. g is not modified.
func DetectCycle(g *Graph) CycleReport {
	state := make(map[string]visitState, len(g.edges))
	// position of each in-progress node within path
	pos := make(map[string]int, len(g.edges))
	var path []string
	var stack []frame

	for _, start := range g.Nodes() {
		if state[start] != unvisited {
			continue
		}
		state[start] = inProgress
		pos[start] = len(path)
		path = append(path, start)
		stack = append(stack, frame{id: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.edges[top.id]
			if top.next >= len(deps) {
				state[top.id] = done
				delete(pos, top.id)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++
			if _, ok := g.edges[dep]; !ok {
				continue
			}

			switch state[dep] {
			case inProgress:
				i := pos[dep]
				cycle := make([]string, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, dep)
				return CycleReport{Path: cycle}
			case done:
				continue
			default:
				state[dep] = inProgress
				pos[dep] = len(path)
				path = append(path, dep)
				stack = append(stack, frame{id: dep})
			}
		}
	}
	return CycleReport{}
}
