package models

// DocumentRole tells the model whose controls a document describes.
type DocumentRole string

const (
	RolePrimary     DocumentRole = "primary"
	RoleFourthParty DocumentRole = "fourth-party"
)

// Valid reports whether r is a known role.
func (r DocumentRole) Valid() bool {
	return r == RolePrimary || r == RoleFourthParty
}

// ExtractionMethod records which extraction path produced a document's text.
type ExtractionMethod string

const (
	MethodPrimary  ExtractionMethod = "primary"
	MethodFallback ExtractionMethod = "fallback"
	MethodFailed   ExtractionMethod = "failed"
)

// UploadedDocument is a single file submitted for analysis. It only lives
// for the duration of one request.
type UploadedDocument struct {
	FileName          string
	MIMEType          string
	SizeBytes         int64
	Raw               []byte
	Role              DocumentRole
	RelationshipLabel string
}

// Label is the human-readable source label used in prompts and evidence.
func (d UploadedDocument) Label() string {
	if d.Role == RoleFourthParty {
		if d.RelationshipLabel != "" {
			return "fourth-party: " + d.RelationshipLabel
		}
		return "fourth-party"
	}
	return "primary vendor"
}

// DocumentMeta is the metadata of an uploaded document without its bytes.
type DocumentMeta struct {
	FileName          string       `json:"file_name"`
	MIMEType          string       `json:"mime_type,omitempty"`
	SizeBytes         int64        `json:"size_bytes"`
	Role              DocumentRole `json:"role"`
	RelationshipLabel string       `json:"relationship_label,omitempty"`
}

// Meta strips the raw bytes from d.
func (d UploadedDocument) Meta() DocumentMeta {
	return DocumentMeta{
		FileName:          d.FileName,
		MIMEType:          d.MIMEType,
		SizeBytes:         d.SizeBytes,
		Role:              d.Role,
		RelationshipLabel: d.RelationshipLabel,
	}
}

// ExtractionResult is the outcome of converting one document to text.
// Text is empty unless Success is true.
type ExtractionResult struct {
	Document   DocumentMeta
	Label      string
	Text       string
	Method     ExtractionMethod
	Confidence float64
	Issues     []string
	PageCount  *int
	Success    bool
}

// DocumentSummary is the per-document extraction metadata kept in a report.
type DocumentSummary struct {
	FileName          string           `json:"file_name"`
	Role              DocumentRole     `json:"role"`
	RelationshipLabel string           `json:"relationship_label,omitempty"`
	SizeBytes         int64            `json:"size_bytes"`
	Method            ExtractionMethod `json:"extraction_method"`
	Confidence        float64          `json:"extraction_confidence"`
	PageCount         *int             `json:"page_count,omitempty"`
	CharCount         int              `json:"char_count"`
	Issues            []string         `json:"issues,omitempty"`
	Success           bool             `json:"success"`
	ArchiveKey        string           `json:"archive_key,omitempty"`
}
