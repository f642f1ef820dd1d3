// Package unit implements the domain layer for the unit registry and its
// dependency graph.
//
// This package follows the same rules as the rest of internal/domain:
//   - Contains only pure Go code with standard library imports
//   - Defines the entity types (Registry, Declaration) and derived data
//     (Graph, CycleReport, ValidationReport)
//   - Implements domain logic (graph construction, three-colour cycle detection)
//   - Has no knowledge of file layout, JSON decoding, or report rendering
//
// # Core Types
//
// Registry is the authoritative mapping from unit identifier to its declared
// location and status. Declaration is a unit's own self-description, loaded
// from the path its registry entry points at.
//
// Graph maps each loaded unit to its ordered dependency list. Edges may point
// at identifiers that have no node (dangling edges); those never take part in
// a cycle.
//
// DetectCycle walks the graph with an explicit stack and returns the first
// cycle it closes, starting and ending at the repeated identifier.
package unit
