package domain

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

// Enabled reports whether the method can be chosen at checkout. Only cash on
// delivery is accepted.
func (m PaymentMethod) Enabled() bool {
	return m == PaymentCOD
}

// WireValue is the payment_method value the orders endpoint expects.
func (m PaymentMethod) WireValue() string {
	switch m {
	case PaymentCOD:
		return "COD"
	case PaymentCard:
		return "credit_card"
	default:
		return string(m)
	}
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCOD:
		return "Cash on Delivery"
	case PaymentCard:
		return "Credit/Debit Card"
	default:
		return string(m)
	}
}
