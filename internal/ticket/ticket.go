package ticket

// Product is one purchased line item reconstructed from a ticket
type Product struct {
	Name     string `json:"nombre"`
	Price    Amount `json:"precio"` // unit price, always > 0 when produced by Parse
	Quantity int    `json:"cantidad"`
}

// Receipt is the structured record reconstructed from OCR text.
// The JSON field names match the response schema of the existing clients.
type Receipt struct {
	Establishment *string   `json:"establecimiento"`
	Date          *string   `json:"fecha"` // raw matched token, not validated
	Products      []Product `json:"productos"`
	Total         Amount    `json:"total"`
}

// Sum returns the sum of price * quantity over all products, rounded to cents
func (r *Receipt) Sum() Amount {
	sum := Zero
	for _, p := range r.Products {
		sum = sum.Add(p.Price.Mul(p.Quantity))
	}
	return sum.Round()
}

// Normalize makes a receipt decoded from an external source honor the same
// shape as one built by Parse: non-nil products, quantities of at least one
// and amounts rounded to cents.
func (r *Receipt) Normalize() {
	if r.Products == nil {
		r.Products = []Product{}
	}
	for i := range r.Products {
		if r.Products[i].Quantity < 1 {
			r.Products[i].Quantity = 1
		}
		r.Products[i].Price = r.Products[i].Price.Round()
	}
	r.Total = r.Total.Round()
}
