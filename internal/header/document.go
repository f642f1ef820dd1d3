// Package header parses and validates the YAML frontmatter that opens every
// specification document (schema "xonaix-document-header", version 2.1).
package header

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned when a document does not open with a
// "---" delimited frontmatter block.
var ErrNoFrontmatter = errors.New("missing YAML frontmatter")

// Document is the subset of the header that is validated and reported on.
// Loosely typed fields are kept as nodes so null and non-string values can
// be told apart from absent ones.
type Document struct {
	Schema         *string    `yaml:"schema"`
	SchemaVersion  *string    `yaml:"schema_version"`
	Repo           *string    `yaml:"repo"`
	Path           *string    `yaml:"path"`
	UnitID         *string    `yaml:"unit_id"`
	Title          *string    `yaml:"title"`
	DocumentType   *string    `yaml:"document_type"`
	Language       *string    `yaml:"language"`
	Version        *string    `yaml:"version"`
	Status         *string    `yaml:"status"`
	TrustClass     yaml.Node  `yaml:"trust_class"`
	Classification *string    `yaml:"classification"`
	Owner          *string    `yaml:"owner"`
	AuthorityTier  *string    `yaml:"authority_tier"`
	Authority      *Authority `yaml:"authority"`
	Integrity      *Integrity `yaml:"integrity"`
	Created        *string    `yaml:"created"`
	LastUpdated    *string    `yaml:"last_updated"`
}

// Authority names the repository and ref that own a document.
type Authority struct {
	Repo *string `yaml:"repo"`
	Ref  *string `yaml:"ref"`
}

// Integrity carries the sealing metadata of a document.
type Integrity struct {
	HashAlg     yaml.Node `yaml:"hash_alg"`
	ContentHash yaml.Node `yaml:"content_hash"`
	Signature   yaml.Node `yaml:"signature"`
	SignedBy    yaml.Node `yaml:"signed_by"`
	SignedAt    yaml.Node `yaml:"signed_at"`
}

// HasContentHash reports whether integrity.content_hash is set and not null.
func (d *Document) HasContentHash() bool {
	return d.Integrity != nil && present(d.Integrity.ContentHash)
}

// HasSignature reports whether integrity.signature is set and not null.
func (d *Document) HasSignature() bool {
	return d.Integrity != nil && present(d.Integrity.Signature)
}

// TrustClassString returns trust_class when it is a string scalar.
func (d *Document) TrustClassString() (string, bool) {
	return stringValue(d.TrustClass)
}

// present reports whether n was set to a non-null value. An absent key
// leaves the node zero-valued.
func present(n yaml.Node) bool {
	return n.Kind != 0 && !(n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func stringValue(n yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", false
	}
	return n.Value, true
}

// StringField returns the string value of an optional integrity field.
func StringField(n yaml.Node) *string {
	s, ok := stringValue(n)
	if !ok {
		return nil
	}
	return &s
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(content []byte) []byte {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), content)
	if err != nil {
		return content
	}
	return out
}

// Frontmatter returns the YAML between the opening "---" and the next
// line that starts with "---".
func Frontmatter(content []byte) ([]byte, bool) {
	content = stripBOM(content)
	if !bytes.HasPrefix(content, []byte("---")) {
		return nil, false
	}
	rest := content[3:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, false
	}
	return rest[:end], true
}

// Parse extracts and decodes the frontmatter of content.
func Parse(content []byte) (*Document, error) {
	fm, ok := Frontmatter(content)
	if !ok {
		return nil, ErrNoFrontmatter
	}
	var doc Document
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &doc, nil
}
