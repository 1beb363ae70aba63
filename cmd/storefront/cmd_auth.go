package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginPhone string
	loginOTP   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your phone number and an OTP",
	Long: `Sends an OTP to the phone number and verifies it. The OTP is read from
--otp or, when omitted, from standard input.`,
	RunE: withApp(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the saved session",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in customer",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		s := a.sessions.Current()
		if s == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		name := s.User.Name
		if name == "" {
			name = "Customer"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", name, s.User.Phone)
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "10-digit mobile number")
	loginCmd.Flags().StringVar(&loginOTP, "otp", "", "6-digit OTP (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("phone")
}

func runLogin(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sent := a.sessions.SendOTP(ctx, loginPhone)
	if !sent.Success {
		return errors.New(sent.Message)
	}
	fmt.Fprintln(out, sent.Message)
	if sent.IsNewUser != nil && *sent.IsNewUser {
		fmt.Fprintln(out, "Welcome! Verifying this OTP creates your account.")
	}

	otp := loginOTP
	if otp == "" {
		fmt.Fprint(out, "Enter OTP: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read OTP: %w", err)
		}
		otp = strings.TrimSpace(line)
	}

	res := a.sessions.VerifyOTP(ctx, loginPhone, otp)
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintf(out, "%s. Logged in as %s.\n", res.Message, a.sessions.Current().User.Phone)
	return nil
}
