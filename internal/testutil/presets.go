package testutil

import "fmt"

// Document returns a markdown document with a valid v2.1 header.
func Document(path, unitID, status string) string {
	return fmt.Sprintf(`---
schema: xonaix-document-header
schema_version: "2.1"
repo: xonaix-library
path: %s
unit_id: %s
title: %s
document_type: standard
language: en
version: XLIB-1.0.0
status: %s
trust_class: L1
classification: public
owner: governance
authority_tier: T1
authority:
  repo: xonaix-library
  ref: main
integrity:
  hash_alg: sha256
  content_hash: abc123
  signature: sig
created: "2025-01-01"
last_updated: "2025-02-01"
---
# %s
`, path, unitID, unitID, status, unitID)
}

// WithStandardRepo adds a repository that passes every check: two units
// where standards/a depends on standards/b, the governance files and the
// meta directory.
func (b *Builder) WithStandardRepo() *Builder {
	return b.
		WithUnit("standards/a", DependsOn("standards/b")).
		WithUnit("standards/b").
		WithGovernanceFiles().
		WithFile("specs/meta/index.md", "# Index\n")
}
