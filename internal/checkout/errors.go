package checkout

import "errors"

var (
	ErrNotAuthenticated   = errors.New("checkout requires a logged-in customer")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrNoAddress          = errors.New("no delivery address selected")
	ErrWrongStep          = errors.New("action not allowed at this checkout step")
	ErrPaymentUnavailable = errors.New("payment method is not available")
	ErrOrderRejected      = errors.New("order creation failed")
)
