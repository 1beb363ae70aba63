package api

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

type Auth struct{ c *Client }

type StartResponse struct {
	Message   string `json:"message"`
	IsNewUser *bool  `json:"isNewUser,omitempty"`
}

// AuthUser is the user object of the verify response.
type AuthUser struct {
	ID          domain.ID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Role        string    `json:"role"`
}

// User converts to the profile persisted with the session.
func (u AuthUser) User() domain.User {
	out := domain.User{ID: u.ID, Phone: u.PhoneNumber, Role: u.Role}
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	return out
}

type VerifyResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *AuthUser `json:"user"`
}

type phoneBody struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp,omitempty"`
}

// Start requests an OTP for phone (unified login/register).
func (a *Auth) Start(ctx context.Context, phone string) (StartResponse, error) {
	var out StartResponse
	err := a.c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/auth/customer/auth",
		body:         phoneBody{PhoneNumber: phone},
		out:          &out,
		skipAuthHook: true,
	})
	return out, err
}

func (a *Auth) Verify(ctx context.Context, phone, otp string) (VerifyResponse, error) {
	var out VerifyResponse
	err := a.c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/auth/customer/verify",
		body:         phoneBody{PhoneNumber: phone, OTP: otp},
		out:          &out,
		skipAuthHook: true,
	})
	return out, err
}
