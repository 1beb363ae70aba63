package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/spf13/cobra"
)

var (
	cartVariant int64
	cartQty     int
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change your cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		if err := a.cart.Refresh(cmd.Context()); err != nil {
			return err
		}
		printCart(cmd.OutOrStdout(), a.cart.State())
		return nil
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		p, err := a.catalog.Product(cmd.Context(), id)
		if err != nil {
			return err
		}
		var variant *int64
		if cartVariant != 0 {
			variant = &cartVariant
		}
		item, err := cart.ItemFromProduct(p, variant)
		if err != nil {
			return err
		}
		for i := 0; i < cartQty; i++ {
			if !a.cart.AddItem(cmd.Context(), item) {
				return errors.New("could not add the item to your cart, please try again")
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s. You now have %d in your cart.\n",
			p.ProductName, a.cart.ItemQuantity(p.ProductID, variant))
		return nil
	}),
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <cart-id> <quantity>",
	Short: "Set the quantity of a cart line; 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if !a.cart.UpdateQuantity(cmd.Context(), domain.ID(args[0]), qty) {
			return errors.New("could not update your cart, please try again")
		}
		printCart(cmd.OutOrStdout(), a.cart.State())
		return nil
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <cart-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		if !a.cart.RemoveItem(cmd.Context(), domain.ID(args[0])) {
			return errors.New("could not remove the item, please try again")
		}
		printCart(cmd.OutOrStdout(), a.cart.State())
		return nil
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		if !a.cart.ClearCart(cmd.Context()) {
			return errors.New("could not clear your cart, please try again")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty.")
		return nil
	}),
}

func init() {
	cartAddCmd.Flags().Int64Var(&cartVariant, "variant", 0, "variant id")
	cartAddCmd.Flags().IntVar(&cartQty, "qty", 1, "units to add")
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)
}
