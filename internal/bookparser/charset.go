package bookparser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset turns raw field bytes into UTF-8 text.
type Charset interface {
	Decode(raw []byte) (string, error)
	Name() string
}

type textCharset struct {
	name string
	enc  encoding.Encoding
}

func (c textCharset) Decode(raw []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}
	return string(out), nil
}

func (c textCharset) Name() string {
	return c.name
}

// DefaultCharset is ISO-8859-1, the charset of AFIP exports.
func DefaultCharset() Charset {
	return textCharset{name: "ISO-8859-1", enc: charmap.ISO8859_1}
}

// CharsetFor resolves a configured encoding name.
//
// SUPPORTED:
//   ISO-8859-1 (latin1), Windows-1252 (cp1252), UTF-8
func CharsetFor(name string) (Charset, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "ISO-8859-1", "ISO8859-1", "LATIN1", "LATIN-1":
		return DefaultCharset(), nil
	case "WINDOWS-1252", "CP1252":
		return textCharset{name: "Windows-1252", enc: charmap.Windows1252}, nil
	case "UTF-8", "UTF8":
		return textCharset{name: "UTF-8", enc: unicode.UTF8}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
