// Package ticket reconstructs a structured purchase receipt from the noisy
// text an OCR engine recovers from a photographed ticket.
//
// Parsing is a single heuristic pass over the normalized lines. It never
// fails: lines that match no rule are dropped. Parse is a pure function and is
// safe to call from multiple goroutines.
package ticket

// Parse reconstructs a Receipt from raw OCR text
func Parse(text string) *Receipt {
	lines := Lines(text)

	receipt := &Receipt{Products: []Product{}, Total: Zero}
	if name, ok := DetectEstablishment(lines); ok {
		receipt.Establishment = &name
	}
	if date, ok := DetectDate(lines); ok {
		receipt.Date = &date
	}

	for _, line := range lines {
		c := Classify(line)
		switch c.Kind {
		case KindTotal:
			receipt.Total = *c.Amount
		case KindProduct:
			receipt.Products = append(receipt.Products, *c.Product)
		}
	}

	if receipt.Total.IsZero() && len(receipt.Products) > 0 {
		receipt.Total = receipt.Sum()
	}
	return receipt
}

// Explain classifies every normalized line the way Parse does
func Explain(text string) []Classification {
	lines := Lines(text)
	out := make([]Classification, 0, len(lines))
	for _, line := range lines {
		out = append(out, Classify(line))
	}
	return out
}
