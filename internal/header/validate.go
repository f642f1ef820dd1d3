package header

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SchemaName is the required value of the schema field.
const SchemaName = "xonaix-document-header"

var (
	validStatuses       = []string{"draft", "internal_review", "proposed", "approved", "sealed", "deprecated", "superseded"}
	validTrustClasses   = []string{"L0", "L1", "L2", "L3", "L4", "L1/L2", "L3/L4"}
	validAuthorityTiers = []string{"T0", "T1", "T2", "T3"}
	validDocTypes       = []string{"standard", "mini-standard", "template", "contract"}
	validClassification = []string{"public", "internal", "confidential", "restricted"}
	versionPrefixes     = []string{"XZERO-", "XCORT-", "XCODE-", "XNEX-", "XBLADE-", "XINFRA-", "XLIB-", "XGOV-", "XUX-"}
)

// Result holds the findings for one document. Only errors fail validation.
type Result struct {
	Errors   []string
	Warnings []string
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Clean reports whether the document has neither errors nor warnings.
func (r Result) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Validate checks content's frontmatter against schema v2.1.
func Validate(content []byte) Result {
	var res Result

	doc, err := Parse(content)
	switch {
	case errors.Is(err, ErrNoFrontmatter):
		res.errorf("Missing YAML frontmatter")
		return res
	case err != nil:
		res.errorf("Invalid YAML: %v", errors.Unwrap(err))
		return res
	}

	ValidateDocument(doc, &res)
	return res
}

// ValidateDocument appends the schema findings for doc to res.
func ValidateDocument(doc *Document, res *Result) {
	if doc.Schema == nil || *doc.Schema != SchemaName {
		res.errorf("schema must be %q", SchemaName)
	}

	switch {
	case doc.SchemaVersion == nil:
		res.errorf("Missing schema_version")
	case *doc.SchemaVersion == "2.1":
	case *doc.SchemaVersion == "2.0":
		res.warnf("schema_version is 2.0, should migrate to 2.1")
	default:
		res.errorf("Unknown schema_version: %s", *doc.SchemaVersion)
	}

	requireField(res, doc.Repo, "repo")
	requireField(res, doc.Path, "path")
	requireField(res, doc.UnitID, "unit_id")
	requireField(res, doc.Title, "title")
	oneOf(res, doc.DocumentType, "document_type", validDocTypes)
	requireField(res, doc.Language, "language")

	if doc.Version == nil {
		res.errorf("Missing version")
	} else if !hasAnyPrefix(*doc.Version, versionPrefixes) {
		res.errorf("Invalid version prefix: %s", *doc.Version)
	}

	validateStatus(doc, res)

	if tc, ok := doc.TrustClassString(); ok && !slices.Contains(validTrustClasses, tc) {
		res.errorf("Invalid trust_class: %s", tc)
	}

	oneOf(res, doc.Classification, "classification", validClassification)
	oneOf(res, doc.AuthorityTier, "authority_tier", validAuthorityTiers)

	if doc.Authority == nil {
		res.errorf("Missing authority section")
	} else {
		requireField(res, doc.Authority.Repo, "authority.repo")
		requireField(res, doc.Authority.Ref, "authority.ref")
	}

	requireField(res, doc.Owner, "owner")
	requireField(res, doc.Created, "created")
	requireField(res, doc.LastUpdated, "last_updated")
}

func validateStatus(doc *Document, res *Result) {
	if doc.Status == nil {
		res.errorf("Missing status")
		return
	}
	status := *doc.Status
	if !slices.Contains(validStatuses, status) {
		if status == "active" {
			res.warnf("status 'active' is deprecated in v2.1, use 'approved' or 'sealed'")
		} else {
			res.errorf("Invalid status: %s", status)
		}
	}

	hasHash, hasSig := doc.HasContentHash(), doc.HasSignature()
	if status == "approved" && !hasHash {
		res.warnf("status is 'approved' but content_hash is missing (governance debt)")
	}
	if RequiresSeal(status) {
		if !hasHash {
			res.errorf("status is '%s' but content_hash is missing", status)
		}
		if !hasSig {
			res.errorf("status is '%s' but signature is missing", status)
		}
	}
}

// RequiresSeal reports whether status demands both a content hash and a signature.
func RequiresSeal(status string) bool {
	return status == "sealed" || status == "deprecated" || status == "superseded"
}

func requireField(res *Result, v *string, name string) {
	if v == nil {
		res.errorf("Missing %s", name)
	}
}

func oneOf(res *Result, v *string, name string, allowed []string) {
	if v == nil {
		res.errorf("Missing %s", name)
		return
	}
	if !slices.Contains(allowed, *v) {
		res.errorf("Invalid %s: %s", name, *v)
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
