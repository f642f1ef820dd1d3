// Package report aggregates document headers into a governance report:
// counts by status, type, trust class, classification and authority tier,
// integrity coverage, schema versions, and governance debt.
package report

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/zjrosen/govkit/internal/header"
	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/scan"
)

const (
	Version          = "1.0.0"
	DefaultGenerator = "govkit"
)

// DefaultExcludes are the paths skipped when collecting documents.
var DefaultExcludes = []string{
	"**/_deprecated/**",
	"**/.git*/**",
	"**/target/**",
	"**/manifests/**",
}

// Debt types.
const (
	DebtMissingContentHash = "missing_content_hash"
	DebtMissingSignature   = "missing_signature"
	DebtSchemaMigration    = "schema_migration"
	DebtOther              = "other"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Report is the full governance report.
type Report struct {
	Metadata       Metadata   `json:"metadata"`
	Summary        Summary    `json:"summary"`
	Documents      []Document `json:"documents"`
	GovernanceDebt Debt       `json:"governance_debt"`
}

type Metadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	Generator        string    `json:"generator"`
	GeneratorVersion string    `json:"generator_version"`
	Repository       string    `json:"repository"`
	ReportVersion    string    `json:"report_version"`
}

type Summary struct {
	TotalDocuments   int              `json:"total_documents"`
	ByStatus         map[string]int   `json:"by_status"`
	ByDocumentType   map[string]int   `json:"by_document_type"`
	ByTrustClass     map[string]int   `json:"by_trust_class"`
	ByClassification map[string]int   `json:"by_classification"`
	ByAuthorityTier  map[string]int   `json:"by_authority_tier"`
	Integrity        IntegrityMetrics `json:"integrity_metrics"`
	Schema           SchemaMetrics    `json:"schema_metrics"`
}

type IntegrityMetrics struct {
	WithContentHash        int     `json:"with_content_hash"`
	WithoutContentHash     int     `json:"without_content_hash"`
	WithSignature          int     `json:"with_signature"`
	WithoutSignature       int     `json:"without_signature"`
	FullySealed            int     `json:"fully_sealed"`
	ContentHashCoveragePct float64 `json:"content_hash_coverage_percent"`
	SignatureCoveragePct   float64 `json:"signature_coverage_percent"`
}

type SchemaMetrics struct {
	V21           int `json:"v2_1_documents"`
	V20           int `json:"v2_0_documents"`
	OtherVersion  int `json:"other_version_documents"`
	MissingSchema int `json:"missing_schema"`
}

// Document is the per-document section of the report.
type Document struct {
	Path           string            `json:"path"`
	Title          *string           `json:"title"`
	UnitID         *string           `json:"unit_id"`
	DocumentType   *string           `json:"document_type"`
	Status         *string           `json:"status"`
	TrustClass     *string           `json:"trust_class"`
	Classification *string           `json:"classification"`
	AuthorityTier  *string           `json:"authority_tier"`
	Owner          *string           `json:"owner"`
	SchemaVersion  *string           `json:"schema_version"`
	Integrity      DocumentIntegrity `json:"integrity"`
	GovernanceDebt []string          `json:"governance_debt"`
	Created        *string           `json:"created"`
	LastUpdated    *string           `json:"last_updated"`
}

type DocumentIntegrity struct {
	HasContentHash bool    `json:"has_content_hash"`
	HasSignature   bool    `json:"has_signature"`
	HashAlgorithm  *string `json:"hash_algorithm"`
	SignedBy       *string `json:"signed_by"`
	SignedAt       *string `json:"signed_at"`
}

type Debt struct {
	TotalItems        int            `json:"total_debt_items"`
	DocumentsWithDebt int            `json:"documents_with_debt"`
	ByType            map[string]int `json:"debt_by_type"`
	Items             []DebtItem     `json:"debt_items"`
}

type DebtItem struct {
	Path        string `json:"path"`
	DebtType    string `json:"debt_type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Generator builds reports from the documents under a specs directory.
type Generator struct {
	walker     *scan.Walker
	specsDir   string
	repository string
	version    string
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the generated_at source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithVersion sets metadata.generator_version.
func WithVersion(v string) Option {
	return func(g *Generator) { g.version = v }
}

// NewGenerator creates a Generator. repository is recorded in the metadata.
func NewGenerator(w *scan.Walker, specsDir, repository string, opts ...Option) *Generator {
	g := &Generator{walker: w, specsDir: specsDir, repository: repository, version: "dev", now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate scans every markdown document and aggregates its header.
// Documents without a parsable header are left out.
func (g *Generator) Generate() (*Report, error) {
	files, err := g.walker.Files(g.specsDir, ".md")
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(files))
	for _, p := range files {
		content, err := fs.ReadFile(g.walker.FS(), p)
		if err != nil {
			log.Warn(log.CatReport, "unreadable document skipped", "path", p, "error", err)
			continue
		}
		h, err := header.Parse(content)
		if err != nil {
			log.Debug(log.CatReport, "document without header skipped", "path", p, "error", err)
			continue
		}
		docs = append(docs, documentFrom(p, h))
	}

	r := &Report{
		Metadata: Metadata{
			GeneratedAt:      g.now().UTC(),
			Generator:        DefaultGenerator,
			GeneratorVersion: g.version,
			Repository:       g.repository,
			ReportVersion:    Version,
		},
		Documents: docs,
	}
	r.Summary, r.GovernanceDebt = aggregate(docs)
	log.Debug(log.CatReport, "report generated", "documents", len(docs), "debt", r.GovernanceDebt.TotalItems)
	return r, nil
}

func documentFrom(p string, h *header.Document) Document {
	d := Document{
		Path:           p,
		Title:          h.Title,
		UnitID:         h.UnitID,
		DocumentType:   h.DocumentType,
		Status:         h.Status,
		Classification: h.Classification,
		AuthorityTier:  h.AuthorityTier,
		Owner:          h.Owner,
		SchemaVersion:  h.SchemaVersion,
		Created:        h.Created,
		LastUpdated:    h.LastUpdated,
		GovernanceDebt: []string{},
		Integrity: DocumentIntegrity{
			HasContentHash: h.HasContentHash(),
			HasSignature:   h.HasSignature(),
		},
	}
	if tc, ok := h.TrustClassString(); ok {
		d.TrustClass = &tc
	}
	if h.Integrity != nil {
		d.Integrity.HashAlgorithm = header.StringField(h.Integrity.HashAlg)
		d.Integrity.SignedBy = header.StringField(h.Integrity.SignedBy)
		d.Integrity.SignedAt = header.StringField(h.Integrity.SignedAt)
	}
	d.GovernanceDebt = debtOf(h)
	return d
}

func debtOf(h *header.Document) []string {
	debt := []string{}
	if h.Status != nil {
		status := *h.Status
		sealed := status == "sealed" || status == "deprecated" || status == "superseded"
		if status == "approved" && !h.HasContentHash() {
			debt = append(debt, "content_hash missing (approved status)")
		}
		if sealed && !h.HasContentHash() {
			debt = append(debt, "content_hash missing (sealed/deprecated/superseded)")
		}
		if sealed && !h.HasSignature() {
			debt = append(debt, "signature missing (sealed/deprecated/superseded)")
		}
	}
	if h.SchemaVersion != nil && *h.SchemaVersion == "2.0" {
		debt = append(debt, "schema_version 2.0 (should migrate to 2.1)")
	}
	return debt
}

// Classify returns the debt type and severity of a debt description.
func Classify(desc string) (debtType, severity string) {
	switch {
	case strings.Contains(desc, "content_hash"):
		debtType = DebtMissingContentHash
	case strings.Contains(desc, "signature"):
		debtType = DebtMissingSignature
	case strings.Contains(desc, "schema_version"):
		debtType = DebtSchemaMigration
	default:
		debtType = DebtOther
	}
	severity = SeverityWarning
	if strings.Contains(desc, "sealed") || strings.Contains(desc, "deprecated") {
		severity = SeverityError
	}
	return debtType, severity
}

func inc(m map[string]int, key *string) {
	if key != nil {
		m[*key]++
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		total = 1
	}
	return float64(n) / float64(total) * 100
}

func aggregate(docs []Document) (Summary, Debt) {
	s := Summary{
		TotalDocuments:   len(docs),
		ByStatus:         map[string]int{},
		ByDocumentType:   map[string]int{},
		ByTrustClass:     map[string]int{},
		ByClassification: map[string]int{},
		ByAuthorityTier:  map[string]int{},
	}
	debt := Debt{ByType: map[string]int{}, Items: []DebtItem{}}

	for _, d := range docs {
		inc(s.ByStatus, d.Status)
		inc(s.ByDocumentType, d.DocumentType)
		inc(s.ByClassification, d.Classification)
		inc(s.ByAuthorityTier, d.AuthorityTier)
		if d.TrustClass != nil {
			s.ByTrustClass[*d.TrustClass]++
		} else {
			s.ByTrustClass["unspecified"]++
		}

		if d.Integrity.HasContentHash {
			s.Integrity.WithContentHash++
		}
		if d.Integrity.HasSignature {
			s.Integrity.WithSignature++
		}
		if d.Integrity.HasContentHash && d.Integrity.HasSignature {
			s.Integrity.FullySealed++
		}

		switch {
		case d.SchemaVersion == nil:
			s.Schema.MissingSchema++
		case *d.SchemaVersion == "2.1":
			s.Schema.V21++
		case *d.SchemaVersion == "2.0":
			s.Schema.V20++
		default:
			s.Schema.OtherVersion++
		}

		if len(d.GovernanceDebt) > 0 {
			debt.DocumentsWithDebt++
		}
		for _, desc := range d.GovernanceDebt {
			typ, sev := Classify(desc)
			debt.ByType[typ]++
			debt.Items = append(debt.Items, DebtItem{Path: d.Path, DebtType: typ, Description: desc, Severity: sev})
		}
	}

	total := len(docs)
	s.Integrity.WithoutContentHash = total - s.Integrity.WithContentHash
	s.Integrity.WithoutSignature = total - s.Integrity.WithSignature
	s.Integrity.ContentHashCoveragePct = percent(s.Integrity.WithContentHash, total)
	s.Integrity.SignatureCoveragePct = percent(s.Integrity.WithSignature, total)
	debt.TotalItems = len(debt.Items)
	return s, debt
}

// String renders the one-line summary used in logs.
func (r *Report) String() string {
	return fmt.Sprintf("%d documents, %d debt items", r.Summary.TotalDocuments, r.GovernanceDebt.TotalItems)
}
