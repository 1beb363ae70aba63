package main

import (
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/spf13/cobra"
)

var newAddress domain.AddressInput

var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Manage delivery addresses",
}

var addressesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		list, err := a.addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved addresses.")
		}
		for _, addr := range list {
			printAddress(cmd.OutOrStdout(), addr)
		}
		return nil
	}),
}

var addressesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new address",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		addr, err := a.addresses.Create(cmd.Context(), newAddress)
		if err != nil {
			return err
		}
		printAddress(cmd.OutOrStdout(), addr)
		return nil
	}),
}

var addressesDeleteCmd = &cobra.Command{
	Use:   "delete <address-id>",
	Short: "Delete an address",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.addresses.Delete(cmd.Context(), domain.ID(args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Address deleted.")
		return nil
	}),
}

var addressesDefaultCmd = &cobra.Command{
	Use:   "default <address-id>",
	Short: "Make an address the default",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.addresses.SetDefault(cmd.Context(), domain.ID(args[0])); err != nil {
			return err
		}
		if def, ok := a.addresses.Default(); ok {
			printAddress(cmd.OutOrStdout(), def)
		}
		return nil
	}),
}

func init() {
	f := addressesAddCmd.Flags()
	f.StringVar(&newAddress.AddressType, "type", "home", "home, work or other")
	f.StringVar(&newAddress.FullName, "name", "", "full name")
	f.StringVar(&newAddress.MobileNumber, "mobile", "", "10-digit mobile number")
	f.StringVar(&newAddress.AddressLine1, "line1", "", "address line 1")
	f.StringVar(&newAddress.Pincode, "pincode", "", "6-digit pincode")
	f.StringVar(&newAddress.City, "city", "", "city")
	f.StringVar(&newAddress.State, "state", "", "state")
	f.BoolVar(&newAddress.IsDefault, "default", false, "make this the default address")

	addressesCmd.AddCommand(addressesListCmd, addressesAddCmd, addressesDeleteCmd, addressesDefaultCmd)
}
