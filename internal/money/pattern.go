package money

import (
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// pattern is the decomposed shape of a locale's rendering of one currency:
// separators, grouping sizes and affix placement. Detected once per
// (locale, currency) pair and cached by the Registry.
type pattern struct {
	prefix     string
	suffix     string
	decimalSep string
	groupSep   string
	groupSizes []int // innermost group first
	minus      string
}

func (p pattern) group(digits string) string {
	if p.groupSep == "" || len(p.groupSizes) == 0 {
		return digits
	}
	var groups []string
	rest := digits
	for i := 0; len(rest) > 0; i++ {
		size := p.groupSizes[len(p.groupSizes)-1]
		if i < len(p.groupSizes) {
			size = p.groupSizes[i]
		}
		if len(rest) <= size {
			groups = append(groups, rest)
			break
		}
		groups = append(groups, rest[len(rest)-size:])
		rest = rest[:len(rest)-size]
	}
	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		if i > 0 {
			b.WriteString(p.groupSep)
		}
	}
	return b.String()
}

func (r *Registry) pattern(code string, f Format) pattern {
	if p, ok := r.patterns[code]; ok {
		return p
	}
	p := detectPattern(r.locale, code, f)
	r.patterns[code] = p
	return p
}

// detectPattern samples the locale's own formatting of two representative
// numbers (one fractional, one large enough to exercise multi-level
// grouping) plus one currency-affixed value, and decomposes the output.
func detectPattern(locale language.Tag, code string, f Format) pattern {
	p := message.NewPrinter(locale)

	pat := pattern{decimalSep: ".", minus: "-"}

	frac := p.Sprint(number.Decimal(2.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	if sep := lastSeparator(frac); sep != "" {
		pat.decimalSep = sep
	}

	grouped := p.Sprint(number.Decimal(123456789, number.MaxFractionDigits(0)))
	pat.groupSep, pat.groupSizes = decomposeGrouping(grouped)

	negative := p.Sprint(number.Decimal(-1, number.MaxFractionDigits(0)))
	if i := indexFirstDigit(negative); i > 0 {
		pat.minus = strings.TrimSpace(negative[:i])
		if pat.minus == "" {
			pat.minus = "-"
		}
	}

	if f.Symbol != "" {
		// Manual symbol prefix for codes outside ISO 4217.
		pat.prefix = f.Symbol + " "
		return pat
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		pat.prefix = code + " "
		return pat
	}
	affixed := p.Sprint(currency.Symbol(unit.Amount(0)))
	pat.prefix, pat.suffix = decomposeAffixes(affixed)
	return pat
}

func indexFirstDigit(s string) int {
	for i, r := range s {
		if unicode.IsDigit(r) {
			return i
		}
	}
	return -1
}

func indexLastDigit(s string) int {
	last := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			last = i + len(string(r)) - 1
		}
	}
	return last
}

// lastSeparator returns the non-digit run closest to the end of the digit
// span, i.e. the decimal separator of a fractional sample.
func lastSeparator(s string) string {
	first, last := indexFirstDigit(s), indexLastDigit(s)
	if first < 0 || last <= first {
		return ""
	}
	span := s[first : last+1]
	var cur []rune
	var lastRun string
	for _, r := range span {
		if unicode.IsDigit(r) {
			if len(cur) > 0 {
				lastRun = string(cur)
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	return lastRun
}

// decomposeGrouping splits a grouped integer sample into the group separator
// and the digit-run sizes between separators, innermost first.
func decomposeGrouping(s string) (string, []int) {
	first, last := indexFirstDigit(s), indexLastDigit(s)
	if first < 0 {
		return "", nil
	}
	span := s[first : last+1]
	var sep string
	var sizes []int
	run := 0
	for _, r := range span {
		if unicode.IsDigit(r) {
			run++
			continue
		}
		sep = string(r)
		sizes = append(sizes, run)
		run = 0
	}
	if sep == "" {
		return "", nil
	}
	sizes = append(sizes, run)
	// sizes currently reads outermost-first; the pattern wants innermost
	// first, and the leading (outermost) run is not a real group size.
	inner := make([]int, 0, len(sizes)-1)
	for i := len(sizes) - 1; i >= 1; i-- {
		inner = append(inner, sizes[i])
	}
	return sep, inner
}

// decomposeAffixes splits a currency-formatted sample into the text before
// the first digit and after the last.
func decomposeAffixes(s string) (string, string) {
	first, last := indexFirstDigit(s), indexLastDigit(s)
	if first < 0 {
		return "", ""
	}
	return s[:first], s[last+1:]
}
