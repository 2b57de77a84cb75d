package domain

// PaymentMethod is one of the fixed deposit rails. The set is configured at
// startup and not user-editable.
type PaymentMethod struct {
	ID   string
	Name string
}

// DefaultPaymentMethods is the seed set of deposit rails.
func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "sbp", Name: "SBP instant transfer"},
		{ID: "ru_card", Name: "Bank card (RU)"},
		{ID: "ua_card", Name: "Bank card (UA)"},
		{ID: "eu_card", Name: "Bank card (EU)"},
	}
}
