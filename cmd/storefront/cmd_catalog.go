package main

import (
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/spf13/cobra"
)

var (
	productsCategory    int64
	productsSubcategory string
	productsSort        string
	productsPage        int
	productsLimit       int
	bannerType          string
)

var pincodeCmd = &cobra.Command{
	Use:   "pincode [code]",
	Short: "Show or set the delivery pincode",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			code, err := a.location.RequirePincode()
			if err != nil {
				if a.location.FirstTime() {
					fmt.Fprintln(out, "Welcome! Tell us where to deliver.")
				}
				return errPincodeRequired
			}
			fmt.Fprintf(out, "Delivering to %s\n", code)
			return nil
		}
		if err := a.location.SetPincode(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Delivery pincode set to %s\n", args[0])
		return nil
	}),
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show banners, categories and products for your pincode",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		code, err := a.location.RequirePincode()
		if err != nil {
			return errPincodeRequired
		}
		home, err := a.catalog.Home(cmd.Context(), code)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, b := range home.Banners {
			fmt.Fprintf(out, "* %s\n", b.Title)
		}
		names := make([]string, 0, len(home.Categories))
		for _, c := range home.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(out, "\nCategories: %s\n\nProducts near %s:\n", strings.Join(names, ", "), code)
		printProducts(out, home.Products)
		return nil
	}),
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		filter := domain.ProductFilter{
			CategoryID:      productsCategory,
			SubcategoryName: productsSubcategory,
			Pincode:         a.location.Pincode(),
			Sort:            domain.ProductSort(productsSort),
			Page:            productsPage,
			Limit:           productsLimit,
		}
		list, err := a.catalog.Products(cmd.Context(), filter)
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), list)
		return nil
	}),
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product with its variants and reviews",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		p, err := a.catalog.Product(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n%s\n", p.ProductName, money(p.Price()), p.Description)
		for _, v := range p.Variants {
			fmt.Fprintf(out, "  variant %d: %s %s\n", v.VariantID, v.VariantName, money(v.VariantPrice))
		}
		if qty := a.cart.ItemQuantity(p.ProductID, nil); qty > 0 {
			fmt.Fprintf(out, "In your cart: %d\n", qty)
		}

		reviews, err := a.client.Reviews.ForProduct(cmd.Context(), id)
		if err != nil {
			a.logger.Debug("reviews unavailable")
			return nil
		}
		printReviews(out, reviews)
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		filter := domain.ProductFilter{Pincode: a.location.Pincode(), Page: productsPage, Limit: productsLimit}
		res, err := a.catalog.Search(cmd.Context(), strings.Join(args, " "), filter)
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), res.Products)
		if res.TotalPages > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d results)\n", res.Page, res.TotalPages, res.Total)
		}
		return nil
	}),
}

var categoriesCmd = &cobra.Command{
	Use:   "categories [id]",
	Short: "List categories, or the subcategories of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			id, err := parseID(args[0], "category id")
			if err != nil {
				return err
			}
			subs, err := a.catalog.Subcategories(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, s := range subs {
				fmt.Fprintf(out, "%d\t%s\n", s.SubcategoryID, s.Name)
			}
			return nil
		}
		list, err := a.catalog.Categories(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Fprintf(out, "%d\t%s\n", c.ID, c.Name)
		}
		return nil
	}),
}

var bannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "List promotional banners",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		list, err := a.catalog.Banners(cmd.Context(), bannerType)
		if err != nil {
			return err
		}
		for _, b := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", b.BannerType, b.Title)
		}
		return nil
	}),
}

func init() {
	productsCmd.Flags().Int64Var(&productsCategory, "category", 0, "category id")
	productsCmd.Flags().StringVar(&productsSubcategory, "subcategory", "", "subcategory name")
	productsCmd.Flags().StringVar(&productsSort, "sort", "", "price_low, price_high or latest")
	for _, c := range []*cobra.Command{productsCmd, searchCmd} {
		c.Flags().IntVar(&productsPage, "page", 0, "page number")
		c.Flags().IntVar(&productsLimit, "limit", 0, "page size")
	}
	bannersCmd.Flags().StringVar(&bannerType, "type", "", "banner type, e.g. home_slider")
}
