package extract

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText turns raw bytes into a string. UTF-16 input must carry a BOM.
// Invalid UTF-8 is read as Windows-1252 and reported as lossy.
func decodeText(raw []byte) (text string, lossy bool, err error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", false, fmt.Errorf("decode utf-16: %w", err)
		}
		return string(out), false, nil
	case bytes.HasPrefix(raw, bomUTF8):
		raw = raw[len(bomUTF8):]
	}

	if utf8.Valid(raw) {
		return string(raw), false, nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(out), true, nil
}
