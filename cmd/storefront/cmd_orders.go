package main

import (
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Order history, cancellation and reorder",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		return printHistory(cmd, a)
	}),
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		o, err := a.orders.Get(cmd.Context(), domain.ID(args[0]))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printOrder(out, o)
		fmt.Fprintf(out, "Payment: %s\n", o.PaymentMethod)
		if o.DeliveryAddress != nil {
			printAddress(out, *o.DeliveryAddress)
		}
		return nil
	}),
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a pending order",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		o, err := a.orders.Get(cmd.Context(), domain.ID(args[0]))
		if err != nil {
			return err
		}
		if err := a.orders.Cancel(cmd.Context(), o); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order #%s cancelled.\n", o.OrderID)
		return nil
	}),
}

var ordersReorderCmd = &cobra.Command{
	Use:   "reorder <order-id>",
	Short: "Replace the cart with the items of a delivered order",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		o, err := a.orders.Get(cmd.Context(), domain.ID(args[0]))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		detach := a.bus.OpenCart.Subscribe(func(ev events.OpenCart) {
			printCart(out, a.cart.State())
			if ev.OpenCheckout {
				fmt.Fprintln(out, "Ready to check out: storefront checkout")
			}
		})
		defer detach()

		res, err := a.orders.Reorder(cmd.Context(), o)
		if err != nil {
			return err
		}
		if res.Failed > 0 {
			fmt.Fprintf(out, "%d item(s) could not be added.\n", res.Failed)
		}
		return nil
	}),
}

func printHistory(cmd *cobra.Command, a *app) error {
	list, err := a.orders.History(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}
	for _, o := range list {
		printOrder(out, o)
	}
	return nil
}

func init() {
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersCancelCmd, ordersReorderCmd)
}
