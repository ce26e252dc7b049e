package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/riskdesk/internal/api/middleware"
	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/internal/assessment"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// CallerKeyHeader carries a bring-your-own provider key.
const CallerKeyHeader = "X-AI-API-Key"

const multipartMemory = 32 << 20

// Analyzer runs one assessment.
type Analyzer interface {
	Analyze(ctx context.Context, caller models.CallerContext, req assessment.AnalyzeRequest) (*models.AnalysisReport, error)
}

// AnalyzeOptions bounds the upload endpoint.
type AnalyzeOptions struct {
	// MaxRequestBytes caps the whole multipart body.
	MaxRequestBytes int64
	// DemoModeEnabled lets any caller ask for a non-persisted demo run.
	DemoModeEnabled bool
}

type documentMetadata struct {
	FileName          string              `json:"fileName"`
	Role              models.DocumentRole `json:"role"`
	RelationshipLabel string              `json:"relationshipLabel"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/assessments/analyze.
func NewAnalyzeHandler(svc Analyzer, opts AnalyzeOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := mw.Caller(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		if opts.MaxRequestBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, opts.MaxRequestBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.ErrorWithSuggestion(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE",
					fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit),
					"Upload fewer documents per request or split large files.")
				return
			}
			response.ErrorWithSuggestion(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Request must be multipart/form-data", "Send documents as files[] form fields.")
			return
		}
		defer r.MultipartForm.RemoveAll()

		req, err := parseAnalyzeForm(r.MultipartForm)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		req.CallerKey = strings.TrimSpace(r.Header.Get(CallerKeyHeader))

		if demo, _ := strconv.ParseBool(r.FormValue("demo")); demo {
			if !opts.DemoModeEnabled {
				response.ErrorWithSuggestion(w, http.StatusForbidden, "DEMO_DISABLED",
					"Demo mode is disabled on this server", "Remove the demo field or use a demo API key.")
				return
			}
			caller.IsDemo = true
		}

		report, err := svc.Analyze(r.Context(), caller, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		response.JSON(w, report)
	}
}

func parseAnalyzeForm(form *multipart.Form) (assessment.AnalyzeRequest, error) {
	var req assessment.AnalyzeRequest

	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	if raw := value("questions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Questions); err != nil {
			return req, fmt.Errorf("questions must be a JSON array of questions: %v", err)
		}
	}

	var meta []documentMetadata
	if raw := value("documentMetadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return req, fmt.Errorf("documentMetadata must be a JSON array: %v", err)
		}
	}

	req.AssessmentType = value("assessmentType")
	if req.AssessmentType == "" {
		req.AssessmentType = "general"
	}
	req.UserID = value("userId")
	if raw := value("assessmentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, fmt.Errorf("assessmentId must be a UUID")
		}
		req.AssessmentID = &id
	}
	if raw := value("storeDocuments"); raw != "" {
		store, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("storeDocuments must be true or false")
		}
		req.StoreDocuments = store
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	for i, fh := range files {
		doc, err := readUpload(fh)
		if err != nil {
			return req, err
		}
		applyMetadata(&doc, i, meta)
		req.Documents = append(req.Documents, doc)
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) (models.UploadedDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("reading %s: %v", fh.Filename, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("reading %s: %v", fh.Filename, err)
	}
	return models.UploadedDocument{
		FileName:  fh.Filename,
		MIMEType:  fh.Header.Get("Content-Type"),
		SizeBytes: int64(len(raw)),
		Raw:       raw,
		Role:      models.RolePrimary,
	}, nil
}

// applyMetadata matches metadata by file name, falling back to position.
func applyMetadata(doc *models.UploadedDocument, index int, meta []documentMetadata) {
	var m *documentMetadata
	for i := range meta {
		if meta[i].FileName == doc.FileName {
			m = &meta[i]
			break
		}
	}
	if m == nil && index < len(meta) && meta[index].FileName == "" {
		m = &meta[index]
	}
	if m == nil {
		return
	}
	if m.Role != "" {
		doc.Role = m.Role
	}
	doc.RelationshipLabel = strings.TrimSpace(m.RelationshipLabel)
}
