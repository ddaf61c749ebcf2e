package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cascadelog/internal/cascade"
)

// Auth endpoints follow the GoTrue shape: password grants against
// /auth/v1/token and registrations against /auth/v1/signup, both carrying
// the project's anon key.

type authUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	} `json:"user_metadata"`
}

type authResponse struct {
	AccessToken string   `json:"access_token"`
	User        authUser `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*cascade.AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	resp, err := c.authPost(ctx, "sign-in", "/auth/v1/token?grant_type=password", payload)
	if err != nil {
		return nil, err
	}
	return &cascade.AuthResult{
		UserID:      resp.User.ID,
		Token:       resp.AccessToken,
		DisplayName: resp.User.Metadata.FullName,
	}, nil
}

func (c *Client) SignUp(ctx context.Context, name, phone, email, password string) (*cascade.AuthResult, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"full_name": name,
			"phone":     phone,
		},
	}
	resp, err := c.authPost(ctx, "sign-up", "/auth/v1/signup", payload)
	if err != nil {
		return nil, err
	}
	return &cascade.AuthResult{
		UserID:      resp.User.ID,
		Token:       resp.AccessToken,
		DisplayName: name,
	}, nil
}

func (c *Client) authPost(ctx context.Context, op, path string, payload any) (*authResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &cascade.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &cascade.NetworkError{Op: op, Status: resp.StatusCode, Err: authError(resp.Body)}
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &cascade.NetworkError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &out, nil
}

// authError extracts the provider's error message, which arrives under
// different keys depending on the failure.
func authError(r io.Reader) error {
	var payload struct {
		Message     string `json:"msg"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil
	}
	switch {
	case payload.Description != "":
		return fmt.Errorf("%s", payload.Description)
	case payload.Message != "":
		return fmt.Errorf("%s", payload.Message)
	}
	return nil
}
