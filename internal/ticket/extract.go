package ticket

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LineKind tells which rule consumed a line
type LineKind string

const (
	KindTotal     LineKind = "total"
	KindNoise     LineKind = "noise"
	KindProduct   LineKind = "product"
	KindUnmatched LineKind = "unmatched"
)

// Classification is the outcome of running the rule table over one line
type Classification struct {
	Line    string   `json:"line"`
	Kind    LineKind `json:"kind"`
	Rule    string   `json:"rule,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Amount  *Amount  `json:"amount,omitempty"`
	Product *Product `json:"product,omitempty"`
}

var (
	// \btotal rather than a bare substring, so SUBTOTAL lines fall to the noise rule
	reTotal = regexp.MustCompile(`(?i)\btotal\s*:?\s*([-+]?\d+[.,]\d{2})(?:\D|$)`)
	// total stays in the list for lines such as TOTAL A PAGAR 3,80 that the total rule rejects
	reNoise = regexp.MustCompile(`(?i)\b(?:subtotal|total|tax|iva|cambio|efectivo|tarjeta|visa|mastercard|ticket|factura|gracias|cif|nif)`)
	rePrice = regexp.MustCompile(`([-+]?\d{1,4}[.,]\d{2})\s*[€$£]?\s*$`)
	// table borders read as || or // or __
	reArtifacts = regexp.MustCompile(`[|\\/_]{2,}`)
	reQuantity  = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.+)$`)
)

// rule inspects a line and reports whether it consumed it
type rule struct {
	name  string
	apply func(line string) (Classification, bool)
}

// rules is evaluated top to bottom; the first rule that consumes a line wins
var rules = []rule{
	{name: "total", apply: matchTotal},
	{name: "noise", apply: matchNoise},
	{name: "priced", apply: matchPriced},
}

// Classify runs the rule table over a single normalized line
func Classify(line string) Classification {
	for _, r := range rules {
		if c, ok := r.apply(line); ok {
			c.Line = line
			c.Rule = r.name
			return c
		}
	}
	return Classification{Line: line, Kind: KindUnmatched}
}

func matchTotal(line string) (Classification, bool) {
	m := reTotal.FindStringSubmatch(line)
	if m == nil {
		return Classification{}, false
	}
	amount, err := ParseAmount(m[1])
	if err != nil {
		return Classification{Kind: KindUnmatched, Reason: "unparseable amount"}, true
	}
	return Classification{Kind: KindTotal, Amount: &amount}, true
}

func matchNoise(line string) (Classification, bool) {
	m := reNoise.FindString(line)
	if m == "" {
		return Classification{}, false
	}
	return Classification{Kind: KindNoise, Reason: strings.ToLower(m)}, true
}

func matchPriced(line string) (Classification, bool) {
	loc := rePrice.FindStringSubmatchIndex(line)
	if loc == nil {
		return Classification{}, false
	}
	price, err := ParseAmount(line[loc[2]:loc[3]])
	if err != nil {
		return Classification{Kind: KindUnmatched, Reason: "unparseable amount"}, true
	}
	if !price.IsPositive() {
		return Classification{Kind: KindUnmatched, Reason: "non-positive price", Amount: &price}, true
	}

	name := reArtifacts.ReplaceAllString(line[:loc[0]], "")
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return Classification{Kind: KindUnmatched, Reason: "name too short", Amount: &price}, true
	}

	quantity := 1
	if m := reQuantity.FindStringSubmatch(name); m != nil {
		// a zero or overflowing prefix is not a quantity
		if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
			quantity = q
			name = m[2]
		}
	}

	return Classification{
		Kind:    KindProduct,
		Amount:  &price,
		Product: &Product{Name: capitalize(name), Price: price, Quantity: quantity},
	}, true
}

// capitalize upper-cases the first character and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	// Casers are stateful, so each call gets its own
	upper := cases.Upper(language.Spanish)
	lower := cases.Lower(language.Spanish)
	return upper.String(s[:size]) + lower.String(s[size:])
}
