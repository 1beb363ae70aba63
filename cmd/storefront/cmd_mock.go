package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/fakeapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mockAddr string

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Serve an in-memory storefront API for local development",
	Long: `Serves every storefront endpoint over seeded demo data under /api.
Point api.base_url at http://localhost:8089/api to use it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Mock.Addr
		if mockAddr != "" {
			addr = mockAddr
		}
		fake := fakeapi.New(fakeapi.Options{Secret: cfg.Mock.Secret, OTP: cfg.Mock.OTP}, logger)
		defer fake.Close()

		srv := &http.Server{
			Addr:         addr,
			Handler:      fake,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("mock API starting", zap.String("addr", addr), zap.Strings("pincodes", fakeapi.SeedPincodes))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-cmd.Context().Done():
		}

		logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info("server exited")
		return nil
	},
}

func init() {
	mockAPICmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (defaults to mock.addr)")
}
