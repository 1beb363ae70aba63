package checkout

type Step string

const (
	StepCart         Step = "cart"
	StepAddress      Step = "address"
	StepSummary      Step = "summary"
	StepConfirmation Step = "confirmation"
)

var steps = []Step{StepCart, StepAddress, StepSummary, StepConfirmation}

// Steps lists the flow in order.
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// Index is the position of s in the flow, -1 for unknown steps.
func (s Step) Index() int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Step) IsTerminal() bool {
	return s == StepConfirmation
}

func (s Step) Title() string {
	switch s {
	case StepCart:
		return "Cart Review"
	case StepAddress:
		return "Delivery Address"
	case StepSummary:
		return "Order Summary"
	case StepConfirmation:
		return "Order Placed"
	default:
		return string(s)
	}
}

func (s Step) Description() string {
	switch s {
	case StepCart:
		return "Review your items"
	case StepAddress:
		return "Select delivery address"
	case StepSummary:
		return "Payment & confirmation"
	case StepConfirmation:
		return "Order confirmation"
	default:
		return ""
	}
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}
