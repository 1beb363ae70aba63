package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPicked         OrderStatus = "picked"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Label is the customer-facing status text.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Order Placed"
	case OrderStatusPicked:
		return "Order Picked"
	case OrderStatusOutForDelivery:
		return "Out for Delivery"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable is true only while the order has not been picked.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

func (s OrderStatus) Reorderable() bool {
	return s == OrderStatusDelivered
}

type OrderItem struct {
	ProductID       int64               `json:"product_id"`
	ProductName     string              `json:"product_name"`
	VariantID       *int64              `json:"variant_id"`
	VariantName     *string             `json:"variant_name"`
	VariantPrice    decimal.NullDecimal `json:"variant_price"`
	BasePrice       decimal.NullDecimal `json:"base_price"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price"`
	ImageURL        *string             `json:"image_url"`
	Quantity        int                 `json:"quantity"`
	Price           decimal.NullDecimal `json:"price"`
	Subtotal        decimal.NullDecimal `json:"subtotal"`
}

type Order struct {
	OrderID         ID              `json:"order_id"`
	OrderStatus     OrderStatus     `json:"order_status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	UserDetails     any             `json:"user_details,omitempty"`
	DeliveryAddress *Address        `json:"delivery_address,omitempty"`
	Items           []OrderItem     `json:"items"`
	Payment         any             `json:"payment,omitempty"`
}

// CreateOrderItem is one line of the POST /orders body.
type CreateOrderItem struct {
	ProductID int64           `json:"product_id"`
	VariantID *int64          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CreateOrderRequest struct {
	UserID            ID                `json:"user_id"`
	VendorID          *int64            `json:"vendor_id,omitempty"`
	Items             []CreateOrderItem `json:"items"`
	PaymentMethod     string            `json:"payment_method"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	DeliveryAddressID ID                `json:"delivery_address_id"`
	OrderType         string            `json:"order_type"`
	Notes             string            `json:"notes,omitempty"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	CustomerName      string            `json:"customer_name,omitempty"`
}

type CreateOrderResponse struct {
	OrderID ID     `json:"order_id"`
	Message string `json:"message,omitempty"`
}
