// Package extract converts uploaded documents to plain text.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Extraction confidence per method. These are labels of how the text was
// obtained rather than measured accuracy.
const (
	PrimaryConfidence      = 0.9
	FallbackConfidence     = 0.3
	TextConfidence         = 1.0
	LossyTextConfidence    = 0.8
	defaultMinContentChars = 100
	defaultConcurrency     = 4
)

// Options bounds what the extractor accepts.
type Options struct {
	// MinContentChars is the least amount of trimmed text a PDF method must
	// produce to count as successful.
	MinContentChars int
	// MaxFileBytes rejects larger uploads. Zero disables the check.
	MaxFileBytes int64
	// Concurrency caps parallel extractions in ExtractAll.
	Concurrency int
}

// Extractor turns documents into ExtractionResults. It has no side effects
// and is safe for concurrent use.
type Extractor struct {
	opts      Options
	pdfText   func(raw []byte) (string, int, error)
	pdfPages  func(raw []byte) (int, error)
	pdfRawRun func(raw []byte) string
}

// New creates an Extractor, filling unset options with defaults.
func New(opts Options) *Extractor {
	if opts.MinContentChars <= 0 {
		opts.MinContentChars = defaultMinContentChars
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Extractor{
		opts:      opts,
		pdfText:   readPDFText,
		pdfPages:  countPDFPages,
		pdfRawRun: scanRawPDF,
	}
}

// Extract converts a single document. Unsupported uploads return a
// *models.FormatError; documents whose text could not be recovered return
// a failed result together with an error wrapping models.ErrExtractionFailed.
func (e *Extractor) Extract(doc models.UploadedDocument) (models.ExtractionResult, error) {
	res := models.ExtractionResult{
		Document: doc.Meta(),
		Label:    doc.Label(),
		Method:   models.MethodFailed,
	}

	kind, ext := detect(doc.FileName, doc.MIMEType)
	if kind == kindUnknown {
		ferr := &models.FormatError{
			FileName:   doc.FileName,
			Extension:  ext,
			Reason:     fmt.Sprintf("unsupported file type %q", ext),
			Suggestion: suggestionFor(ext),
		}
		res.Issues = []string{ferr.Reason, ferr.Suggestion}
		return res, ferr
	}

	size := doc.SizeBytes
	if size == 0 {
		size = int64(len(doc.Raw))
	}
	if e.opts.MaxFileBytes > 0 && size > e.opts.MaxFileBytes {
		ferr := &models.FormatError{
			FileName:   doc.FileName,
			Extension:  ext,
			Reason:     fmt.Sprintf("file is %d bytes, limit is %d", size, e.opts.MaxFileBytes),
			Suggestion: "Split the document into smaller files or remove embedded images.",
		}
		res.Issues = []string{ferr.Reason, ferr.Suggestion}
		return res, ferr
	}

	switch kind {
	case kindPDF:
		e.extractPDF(doc.Raw, &res)
	default:
		e.extractText(doc.Raw, &res)
	}

	if !res.Success {
		res.Text = ""
		res.Confidence = 0
		res.Method = models.MethodFailed
		return res, fmt.Errorf("%s: %w", doc.FileName, models.ErrExtractionFailed)
	}
	return res, nil
}

func (e *Extractor) extractText(raw []byte, res *models.ExtractionResult) {
	text, lossy, err := decodeText(raw)
	if err != nil {
		res.Issues = append(res.Issues, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		res.Issues = append(res.Issues, "document contains no text")
		return
	}

	res.Text = text
	res.Method = models.MethodPrimary
	res.Confidence = TextConfidence
	res.Success = true
	if lossy {
		res.Confidence = LossyTextConfidence
		res.Issues = append(res.Issues, "file is not valid UTF-8; decoded as Windows-1252")
	}
}

func (e *Extractor) extractPDF(raw []byte, res *models.ExtractionResult) {
	text, pages, err := e.pdfText(raw)
	if err != nil {
		res.Issues = append(res.Issues, "structured extraction failed: "+err.Error())
		if n, perr := e.pdfPages(raw); perr == nil {
			pages = n
		}
	}
	if pages > 0 {
		res.PageCount = &pages
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) >= e.opts.MinContentChars {
		res.Text = text
		res.Method = models.MethodPrimary
		res.Confidence = PrimaryConfidence
		res.Success = true
		return
	}
	if err == nil {
		res.Issues = append(res.Issues, fmt.Sprintf("structured extraction produced %d characters, below the %d minimum",
			utf8.RuneCountInString(text), e.opts.MinContentChars))
	}

	fallback := strings.TrimSpace(e.pdfRawRun(raw))
	if utf8.RuneCountInString(fallback) >= e.opts.MinContentChars {
		res.Text = fallback
		res.Method = models.MethodFallback
		res.Confidence = FallbackConfidence
		res.Success = true
		res.Issues = append(res.Issues, "text recovered by raw scan; layout and some characters may be lost")
		return
	}

	res.Issues = append(res.Issues,
		"no readable text found; the PDF may be scanned images or encrypted",
		"Export the document as a text-based PDF or run OCR and upload the resulting .txt file.")
}

// ExtractAll extracts documents in parallel. Per-document failures are
// recorded in the results and never abort the batch. Results keep the
// input order.
func (e *Extractor) ExtractAll(ctx context.Context, docs []models.UploadedDocument) ([]models.ExtractionResult, error) {
	results := make([]models.ExtractionResult, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Extract(doc)
			if err != nil {
				slog.Warn("document extraction failed",
					"file", doc.FileName,
					"method", res.Method,
					"error", err,
				)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting documents: %w", err)
	}
	return results, nil
}
