package extract

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

type formatKind int

const (
	kindUnknown formatKind = iota
	kindPDF
	kindText
)

// Format describes one accepted upload type.
type Format struct {
	Extension string `json:"extension"`
	MIMEType  string `json:"mime_type"`
	Method    string `json:"method"`
	kind      formatKind
}

var formats = map[string]Format{
	".pdf":      {Extension: ".pdf", MIMEType: "application/pdf", Method: "page text extraction with raw-byte fallback", kind: kindPDF},
	".txt":      {Extension: ".txt", MIMEType: "text/plain", Method: "direct decode", kind: kindText},
	".md":       {Extension: ".md", MIMEType: "text/markdown", Method: "direct decode", kind: kindText},
	".markdown": {Extension: ".markdown", MIMEType: "text/markdown", Method: "direct decode", kind: kindText},
	".csv":      {Extension: ".csv", MIMEType: "text/csv", Method: "direct decode", kind: kindText},
	".json":     {Extension: ".json", MIMEType: "application/json", Method: "direct decode", kind: kindText},
	".html":     {Extension: ".html", MIMEType: "text/html", Method: "direct decode", kind: kindText},
	".htm":      {Extension: ".htm", MIMEType: "text/html", Method: "direct decode", kind: kindText},
	".xml":      {Extension: ".xml", MIMEType: "application/xml", Method: "direct decode", kind: kindText},
}

var mimeKinds = map[string]formatKind{
	"application/pdf":  kindPDF,
	"text/plain":       kindText,
	"text/markdown":    kindText,
	"text/csv":         kindText,
	"application/json": kindText,
	"text/html":        kindText,
	"application/xml":  kindText,
	"text/xml":         kindText,
}

// conversion hints for formats people commonly upload by mistake
var suggestions = map[string]string{
	".docx": "Convert the Word document to PDF or plain text (.txt) and upload it again.",
	".doc":  "Convert the Word document to PDF or plain text (.txt) and upload it again.",
	".rtf":  "Save the document as plain text (.txt) or PDF and upload it again.",
	".odt":  "Export the document as PDF or plain text (.txt) and upload it again.",
	".xlsx": "Export the spreadsheet as CSV and upload it again.",
	".xls":  "Export the spreadsheet as CSV and upload it again.",
	".pptx": "Export the presentation as PDF and upload it again.",
	".png":  "Images are not read. Upload a text-based PDF or run OCR and upload the text.",
	".jpg":  "Images are not read. Upload a text-based PDF or run OCR and upload the text.",
	".jpeg": "Images are not read. Upload a text-based PDF or run OCR and upload the text.",
}

// SupportedFormats returns the accepted formats sorted by extension.
func SupportedFormats() []Format {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
	return out
}

func supportedList() string {
	exts := make([]string, 0, len(formats))
	for _, f := range SupportedFormats() {
		exts = append(exts, f.Extension)
	}
	return strings.Join(exts, ", ")
}

// detect resolves the format by extension first and declared MIME type second.
func detect(fileName, mimeType string) (formatKind, string) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if f, ok := formats[ext]; ok {
		return f.kind, ext
	}
	if mimeType != "" {
		if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
			if k, ok := mimeKinds[mt]; ok && suggestions[ext] == "" {
				return k, ext
			}
		}
	}
	return kindUnknown, ext
}

func suggestionFor(ext string) string {
	if s, ok := suggestions[ext]; ok {
		return s
	}
	return "Upload one of the supported formats: " + supportedList() + "."
}
