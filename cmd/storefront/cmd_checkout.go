package main

import (
	"fmt"

	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/spf13/cobra"
)

var (
	checkoutAddress   string
	checkoutPayment   string
	checkoutNotes     string
	checkoutEmail     string
	checkoutViewOrder bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place a cash-on-delivery order for the cart",
	RunE:  withApp(runCheckout),
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutAddress, "address", "", "delivery address id (default address when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutPayment, "payment", string(domain.PaymentCOD), "payment method")
	checkoutCmd.Flags().StringVar(&checkoutNotes, "notes", "", "delivery notes")
	checkoutCmd.Flags().StringVar(&checkoutEmail, "email", "", "email for the order receipt")
	checkoutCmd.Flags().BoolVar(&checkoutViewOrder, "view-orders", false, "show order history after placing the order")
}

func runCheckout(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	flow, err := checkout.Begin(a.sessions, a.cart, a.client.Orders, a.bus, a.logger)
	if err != nil {
		return err
	}
	printStep(cmd, flow.Step())
	printCart(out, a.cart.State())
	if err := flow.Next(); err != nil {
		return err
	}

	printStep(cmd, flow.Step())
	list, err := a.addresses.List(ctx)
	if err != nil {
		return err
	}
	addr, ok := a.addresses.Default()
	if checkoutAddress != "" {
		ok = false
		for _, candidate := range list {
			if candidate.AddressID.String() == checkoutAddress {
				addr, ok = candidate, true
			}
		}
	}
	if !ok {
		return fmt.Errorf("%w: add one with storefront addresses add", checkout.ErrNoAddress)
	}
	printAddress(out, addr)
	flow.SelectAddress(addr)
	if err := flow.Next(); err != nil {
		return err
	}

	printStep(cmd, flow.Step())
	payment := domain.PaymentMethod(checkoutPayment)
	fmt.Fprintf(out, "Payment: %s\n", payment.Label())
	res, err := flow.PlaceOrder(ctx, checkout.PlaceOrderInput{
		Payment:       payment,
		Notes:         checkoutNotes,
		CustomerEmail: checkoutEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to place order, please try again: %w", err)
	}

	printStep(cmd, flow.Step())
	fmt.Fprintf(out, "Order #%s placed. Pay %s on delivery to %s.\n", res.OrderID, money(res.TotalAmount), res.DeliveryAddress.FullName)

	if checkoutViewOrder {
		detach := a.bus.ShowOrderHistory.Subscribe(func(events.ShowOrderHistory) {
			printHistory(cmd, a)
		})
		defer detach()
		a.bus.ShowOrderHistory.Publish(events.ShowOrderHistory{})
	}
	return nil
}

func printStep(cmd *cobra.Command, s checkout.Step) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n== %d/%d %s: %s ==\n", s.Index()+1, len(checkout.Steps()), s.Title(), s.Description())
}
