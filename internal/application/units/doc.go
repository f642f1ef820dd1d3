// Package units implements the application layer for unit registry
// validation and dependency-graph verification.
//
// This package bridges the domain layer to file access:
//   - Loads the registry and unit declarations from an fs.FS rooted at the repository
//   - Validates every registry entry against its declaration
//   - Rebuilds the dependency graph and runs cycle detection
//
// # Architecture
//
// The application layer depends on:
//   - Domain layer (internal/domain/unit): entity types, graph, cycle detection
//   - internal/cachemanager: optional read-through cache for declarations
//   - encoding/json for the registry and declaration formats
//
// All paths handed to this package are repository-relative and slash
// separated, so os.DirFS(root) and fstest.MapFS behave identically.
//
// # Service
//
// Service is the main entry point:
//   - Validate: registry/declaration consistency report plus the accepted units
//   - VerifyGraph: node/edge counts and the first dependency cycle, if any
package units
