package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise writes a config dir under the user's home on first use
	api.DisableConfigDir()
}

// readPDFText extracts text page by page. The reader panics on some
// malformed files, so panics are turned into errors.
func readPDFText(raw []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = r.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), pages, nil
}

// countPDFPages asks pdfcpu for the page count when the text reader could
// not open the file.
func countPDFPages(raw []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(raw), conf)
}

var (
	// (text) Tj and (text) ' operators
	showTextRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")`)
	// [(te) -20 (xt)] TJ arrays
	showArrayRe = regexp.MustCompile(`\[((?:\\.|[^\]])*)\]\s*TJ`)
	arrayPartRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
	printableRe = regexp.MustCompile(`[\x20-\x7E]{8,}`)
)

var pdfSyntax = []string{
	" obj", "endobj", "endstream", "xref", "trailer", "startxref",
	"%PDF", "%%EOF", "<<", ">>", "/Type", "/Filter", "/Length", "/Font",
	"/Page", "/Resources", "/MediaBox", "/Contents", "/Root", "/Info",
}

// scanRawPDF is the fallback path: it pulls literal strings out of
// uncompressed content streams and, failing that, long printable runs that
// do not look like PDF syntax.
func scanRawPDF(raw []byte) string {
	var parts []string
	for _, m := range showTextRe.FindAllSubmatch(raw, -1) {
		if s := strings.TrimSpace(unescapePDFString(m[1])); s != "" {
			parts = append(parts, s)
		}
	}
	for _, m := range showArrayRe.FindAllSubmatch(raw, -1) {
		var b strings.Builder
		for _, p := range arrayPartRe.FindAllSubmatch(m[1], -1) {
			b.WriteString(unescapePDFString(p[1]))
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	for _, run := range printableRe.FindAll(raw, -1) {
		s := strings.TrimSpace(string(run))
		if looksLikeProse(s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func looksLikeProse(s string) bool {
	for _, tok := range pdfSyntax {
		if strings.Contains(s, tok) {
			return false
		}
	}
	var letters, spaces int
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == ' ':
			spaces++
		}
	}
	return spaces > 0 && float64(letters)/float64(len(s)) >= 0.6
}

func unescapePDFString(b []byte) string {
	var out strings.Builder
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' || i+1 >= len(b) {
			out.WriteByte(c)
			continue
		}
		i++
		switch b[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case 'b', 'f':
		case '(', ')', '\\':
			out.WriteByte(b[i])
		case '\n':
		default:
			if b[i] >= '0' && b[i] <= '7' {
				j := i
				for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
					j++
				}
				if n, err := strconv.ParseUint(string(b[i:j]), 8, 8); err == nil {
					out.WriteRune(rune(n))
				}
				i = j - 1
				continue
			}
			out.WriteByte(b[i])
		}
	}
	return out.String()
}
