package buffer

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when a buffer does not declare a charset.
const DefaultEncoding = "utf-8"

// NormalizeEncoding maps a charset label ("UTF8", "latin1", "Shift_JIS") to
// its canonical WHATWG name. Empty or unknown labels map to DefaultEncoding.
func NormalizeEncoding(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultEncoding
	}
	enc, err := htmlindex.Get(trimmed)
	if err != nil {
		return DefaultEncoding
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return DefaultEncoding
	}
	return canonical
}

// EncodingOf reports the charset of buf, DefaultEncoding when buf does not
// implement Encoded.
func EncodingOf(buf FlatBuffer) string {
	if enc, ok := buf.(Encoded); ok {
		return NormalizeEncoding(enc.Encoding())
	}
	return DefaultEncoding
}

// Encode returns the text of buf transcoded into its declared charset.
// Characters the charset cannot represent are written as HTML numeric
// character references.
func Encode(buf FlatBuffer) ([]byte, error) {
	if buf == nil {
		return nil, nil
	}
	text := buf.String()
	name := EncodingOf(buf)
	if name == DefaultEncoding {
		return []byte(text), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("buffer: resolve encoding %q: %w", name, err)
	}
	out, err := encoding.HTMLEscapeUnsupported(enc.NewEncoder()).String(text)
	if err != nil {
		return nil, fmt.Errorf("buffer: encode as %s: %w", name, err)
	}
	return []byte(out), nil
}
