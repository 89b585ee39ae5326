// Package schematest builds fixed-width book lines for tests.
package schematest

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
)

// Line renders one record of s. Fields missing from values get a neutral
// filler: zeros for numerics and identifiers, a fixed date, blanks for text.
// Given values are padded to field width (zeros on the left for numerics and
// identifiers, blanks on the right for text). It panics when a value is
// wider than its field.
func Line(s *schema.BookSchema, values map[int]string) string {
	var b strings.Builder
	b.Grow(s.RecordLength)

	for _, f := range s.Fields {
		v, ok := values[f.Number]
		if !ok {
			v = filler(f)
		}
		if len(v) > f.Width() {
			panic(fmt.Sprintf("field %d value %q wider than %d", f.Number, v, f.Width()))
		}
		b.WriteString(pad(f, v))
	}

	return b.String()
}

// File joins lines with terminator, ending the last line too.
func File(terminator string, lines ...string) string {
	return strings.Join(lines, terminator) + terminator
}

func filler(f schema.FieldDefinition) string {
	switch f.Kind {
	case schema.KindImpliedDecimal, schema.KindPaddedID:
		return strings.Repeat("0", f.Width())
	case schema.KindDate:
		return "20240115"
	default:
		return ""
	}
}

func pad(f schema.FieldDefinition, v string) string {
	missing := f.Width() - len(v)
	switch f.Kind {
	case schema.KindImpliedDecimal, schema.KindPaddedID:
		return strings.Repeat("0", missing) + v
	default:
		return v + strings.Repeat(" ", missing)
	}
}
