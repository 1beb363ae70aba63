package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/spf13/cobra"
)

var (
	reviewsMine   bool
	reviewRating  int
	reviewComment string
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews [product-id]",
	Short: "List reviews of a product, or your own with --mine",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		var (
			list []domain.Review
			err  error
		)
		switch {
		case reviewsMine:
			if err := a.requireLogin(); err != nil {
				return err
			}
			list, err = a.client.Reviews.Mine(cmd.Context(), a.sessions.Token())
		case len(args) == 1:
			var id int64
			if id, err = parseID(args[0], "product id"); err != nil {
				return err
			}
			list, err = a.client.Reviews.ForProduct(cmd.Context(), id)
		default:
			return errors.New("pass a product id or --mine")
		}
		if err != nil {
			return err
		}
		printReviews(cmd.OutOrStdout(), list)
		return nil
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review <order-id> <product-id>",
	Short: "Review a product from a delivered order",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		productID, err := parseID(args[1], "product id")
		if err != nil {
			return err
		}
		in := domain.ReviewInput{
			OrderID:   domain.ID(args[0]),
			ProductID: domain.IDFromInt(productID),
			Rating:    reviewRating,
			Comment:   reviewComment,
		}
		if err := in.Validate(); err != nil {
			return err
		}
		ok, err := a.client.Reviews.CanReview(cmd.Context(), a.sessions.Token(), in.OrderID, productID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("this product cannot be reviewed for that order")
		}
		if err := a.client.Reviews.Create(cmd.Context(), a.sessions.Token(), in); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Thanks for your review!")
		return nil
	}),
}

func init() {
	reviewsCmd.Flags().BoolVar(&reviewsMine, "mine", false, "list your own reviews")
	reviewCmd.Flags().IntVar(&reviewRating, "rating", 0, "rating from 1 to 5")
	reviewCmd.Flags().StringVar(&reviewComment, "comment", "", "review text")
	_ = reviewCmd.MarkFlagRequired("rating")
}

func printReviews(w io.Writer, list []domain.Review) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No reviews yet.")
		return
	}
	for _, r := range list {
		rating := min(max(r.Rating, 0), 5)
		stars := strings.Repeat("*", rating) + strings.Repeat(".", 5-rating)
		fmt.Fprintf(w, "%s %s %s\n", stars, r.UserName, r.Comment)
	}
}
