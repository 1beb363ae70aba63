package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	errLoginRequired   = errors.New("please login first: storefront login --phone <number>")
	errPincodeRequired = errors.New("set your delivery pincode first: storefront pincode <code>")
)

func money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func parseID(raw, what string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return n, nil
}

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTORE")
	for _, p := range products {
		price := money(p.Price())
		if p.DiscountedPrice.Valid {
			price += " (was " + money(p.BasePrice) + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ProductID, p.ProductName, price, p.StoreName)
	}
	tw.Flush()
}

func printCart(w io.Writer, s domain.CartState) {
	if s.Empty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CART ID\tITEM\tQTY\tPRICE\tTOTAL")
	for _, it := range s.Items {
		name := it.ProductName
		if it.VariantName != nil {
			name += " (" + *it.VariantName + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.CartID, name, it.Quantity, money(it.UnitPrice()), money(it.LineTotal()))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d item(s), total %s\n", s.ItemCount, money(s.Total))
}

func printAddress(w io.Writer, a domain.Address) {
	def := ""
	if a.IsDefault {
		def = " [default]"
	}
	fmt.Fprintf(w, "#%s %s%s\n  %s, %s\n  %s\n", a.AddressID, a.FullName, def, a.AddressLine1, a.Pincode, a.MobileNumber)
}

func printOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "Order #%s  %s  %s  %s\n", o.OrderID, o.OrderStatus.Label(), money(o.TotalAmount), o.CreatedAt)
	for _, it := range o.Items {
		name := it.ProductName
		if it.VariantName != nil {
			name += " (" + *it.VariantName + ")"
		}
		fmt.Fprintf(w, "  %d x %s\n", it.Quantity, name)
	}
}
