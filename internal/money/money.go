// Package money formats and parses exact-decimal currency amounts with
// locale-aware separators, grouping and affix placement.
package money

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Format describes how one currency is rendered.
type Format struct {
	// MinFraction pads the fractional part with zeros up to this many digits.
	MinFraction int32
	// MaxFraction truncates (never rounds) the fractional part to this many
	// digits.
	MaxFraction int32
	// Symbol overrides locale affix rules. Required for codes that are not
	// ISO 4217 currencies (crypto, custom units); rendered as a plain prefix.
	Symbol string
}

// DefaultFormat applies to currencies the registry was not configured with.
var DefaultFormat = Format{MinFraction: 2, MaxFraction: 2}

// Registry resolves per-currency formats and caches one detected locale
// pattern per currency. It is injected wherever amounts are rendered; there
// is no package-global table.
type Registry struct {
	locale   language.Tag
	formats  map[string]Format
	patterns map[string]pattern
}

// NewRegistry builds a registry for one locale. The formats map is copied.
func NewRegistry(locale language.Tag, formats map[string]Format) *Registry {
	fm := make(map[string]Format, len(formats))
	for code, f := range formats {
		fm[code] = f
	}
	return &Registry{
		locale:   locale,
		formats:  fm,
		patterns: make(map[string]pattern),
	}
}

// FormatFor returns the configured format for a currency code, falling back
// to DefaultFormat.
func (r *Registry) FormatFor(code string) Format {
	if f, ok := r.formats[code]; ok {
		return f
	}
	return DefaultFormat
}

// Format renders v for the given currency code. The value is truncated to
// the currency's MaxFraction digits and padded to MinFraction; a zero value
// with MinFraction 0 renders with no decimal point at all.
func (r *Registry) Format(code string, v decimal.Decimal) string {
	f := r.FormatFor(code)
	p := r.pattern(code, f)

	v = v.Truncate(f.MaxFraction)
	neg := v.Sign() < 0

	intDigits, fracDigits := splitDigits(v.Abs(), f)
	body := p.group(intDigits)
	if fracDigits != "" {
		body += p.decimalSep + fracDigits
	}

	out := p.prefix + body + p.suffix
	if neg {
		out = p.minus + out
	}
	return out
}

// Parse converts a formatted string back to an exact decimal for the given
// currency. Malformed input yields zero rather than an error; the dashboard
// treats unparseable amounts as empty cells.
func (r *Registry) Parse(code, s string) decimal.Decimal {
	f := r.FormatFor(code)
	p := r.pattern(code, f)

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, strings.TrimSpace(p.prefix))
	s = strings.TrimSuffix(s, strings.TrimSpace(p.suffix))
	if f.Symbol != "" {
		s = strings.TrimPrefix(strings.TrimSpace(s), f.Symbol)
	}

	neg := false
	s = strings.TrimSpace(s)
	if p.minus != "" && strings.HasPrefix(s, p.minus) {
		neg = true
		s = strings.TrimPrefix(s, p.minus)
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	var b strings.Builder
	for _, ch := range s {
		switch {
		case unicode.IsDigit(ch):
			b.WriteRune(ch)
		case string(ch) == p.decimalSep:
			b.WriteRune('.')
		case string(ch) == p.groupSep || unicode.IsSpace(ch):
			// grouping, ignored
		default:
			return decimal.Zero
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	d = d.Truncate(f.MaxFraction)
	if neg {
		d = d.Neg()
	}
	return d
}

// splitDigits returns the integer digit string and the fractional digit
// string after truncation and min-fraction padding.
func splitDigits(v decimal.Decimal, f Format) (string, string) {
	s := v.String()
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	for int32(len(fracPart)) < f.MinFraction {
		fracPart += "0"
	}
	if int32(len(fracPart)) > f.MaxFraction {
		fracPart = fracPart[:f.MaxFraction]
	}
	return intPart, fracPart
}
