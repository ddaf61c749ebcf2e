// Package api implements the HTTP clients for CascadeLog's external
// collaborators: the companion REST API (cascade.Backend) and the session
// provider (cascade.AuthProvider).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
)

// Client talks to the companion REST API and the auth provider.
type Client struct {
	baseURL string
	authURL string
	anonKey string
	http    *http.Client
}

var (
	_ cascade.Backend      = (*Client)(nil)
	_ cascade.AuthProvider = (*Client)(nil)
)

// NewClient creates a Client from configuration. authURL falls back to
// baseURL when unset (single-host deployments).
func NewClient(cfg config.APIConfig) *Client {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = cfg.BaseURL
	}
	return &Client{
		baseURL: cfg.BaseURL,
		authURL: authURL,
		anonKey: cfg.AuthAnonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// wire shapes

type wireFileRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type wireFiles struct {
	HTML *wireFileRef `json:"HTML"`
	CSS  *wireFileRef `json:"CSS"`
	JS   *wireFileRef `json:"JS"`
}

func (w wireFiles) toFiles() cascade.Files {
	var f cascade.Files
	if w.HTML != nil {
		f.HTML = &cascade.FileRef{Name: w.HTML.Name, URL: w.HTML.URL}
	}
	if w.CSS != nil {
		f.CSS = &cascade.FileRef{Name: w.CSS.Name, URL: w.CSS.URL}
	}
	if w.JS != nil {
		f.JS = &cascade.FileRef{Name: w.JS.Name, URL: w.JS.URL}
	}
	return f
}

type checkTodayResponse struct {
	Submitted bool `json:"submitted"`
	Data      *struct {
		Description string    `json:"description"`
		Files       wireFiles `json:"files"`
	} `json:"data"`
}

func (c *Client) CheckToday(ctx context.Context, token string, startOfDay time.Time) (*cascade.CheckTodayResult, error) {
	const op = "check-today"
	endpoint := c.baseURL + "/api/submissions/check-today?date=" +
		url.QueryEscape(startOfDay.UTC().Format(time.RFC3339))

	var resp checkTodayResponse
	if err := c.getJSON(ctx, op, endpoint, token, &resp); err != nil {
		return nil, err
	}

	result := &cascade.CheckTodayResult{Submitted: resp.Submitted}
	if resp.Data != nil {
		result.Description = resp.Data.Description
		result.Files = resp.Data.Files.toFiles()
	}
	return result, nil
}

func (c *Client) SubmitToday(ctx context.Context, token string, sub cascade.SubmissionUpload) error {
	const op = "submit"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	parts := []struct {
		field  string
		upload *cascade.Upload
	}{
		{"html", sub.HTML},
		{"css", sub.CSS},
		{"js", sub.JS},
	}
	for _, p := range parts {
		if p.upload == nil {
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.upload.Name)
		if err != nil {
			return fmt.Errorf("building %s part: %w", p.field, err)
		}
		if _, err := fw.Write(p.upload.Content); err != nil {
			return fmt.Errorf("writing %s part: %w", p.field, err)
		}
	}
	if err := mw.WriteField("description", sub.Description); err != nil {
		return fmt.Errorf("writing description part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/submissions/submit", &body)
	if err != nil {
		return fmt.Errorf("building submit request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.doDiscard(op, req)
}

func (c *Client) Consistency(ctx context.Context, token string) ([]cascade.ActivityRecord, error) {
	var records []cascade.ActivityRecord
	err := c.getJSON(ctx, "consistency", c.baseURL+"/api/submissions/consistency", token, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) GalleryMonth(ctx context.Context, token string, year int, month time.Month) ([]cascade.GalleryItem, error) {
	// The wire contract uses zero-based months (January = 0), inherited
	// from the web client.
	endpoint := fmt.Sprintf("%s/api/submissions/gallery?month=%d&year=%d",
		c.baseURL, int(month)-1, year)

	var items []cascade.GalleryItem
	if err := c.getJSON(ctx, "gallery", endpoint, token, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Date = cascade.Day(items[i].CreatedAt)
	}
	return items, nil
}

func (c *Client) FullProfile(ctx context.Context, token string) (*cascade.Profile, error) {
	var profile cascade.Profile
	if err := c.getJSON(ctx, "full-profile", c.baseURL+"/api/full-profile", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateAbout(ctx context.Context, token string, about string) error {
	const op = "update-about"
	payload, err := json.Marshal(map[string]string{"about": about})
	if err != nil {
		return fmt.Errorf("encoding about payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/update-about", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building update-about request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.doDiscard(op, req)
}

func (c *Client) UpdateAvatar(ctx context.Context, token string, avatar cascade.Upload) (string, error) {
	const op = "update-avatar"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", avatar.Name)
	if err != nil {
		return "", fmt.Errorf("building avatar part: %w", err)
	}
	if _, err := fw.Write(avatar.Content); err != nil {
		return "", fmt.Errorf("writing avatar part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/update-avatar", &body)
	if err != nil {
		return "", fmt.Errorf("building update-avatar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(op, req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) ProfilePing(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/user-profile", nil)
	if err != nil {
		return fmt.Errorf("building user-profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.doDiscard("user-profile", req)
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.postJSON(ctx, "send-otp", c.baseURL+"/api/send-otp",
		map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.postJSON(ctx, "reset-password", c.baseURL+"/api/reset-password",
		map[string]string{"email": email, "otp": otp, "newPassword": newPassword}, nil)
}

func (c *Client) FetchFile(ctx context.Context, fileURL string, w io.Writer) error {
	const op = "fetch-file"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("building file request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &cascade.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &cascade.NetworkError{Op: op, Status: resp.StatusCode}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &cascade.NetworkError{Op: op, Err: err}
	}
	return nil
}

// request plumbing

func (c *Client) getJSON(ctx context.Context, op, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.doJSON(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if out == nil {
		return c.doDiscard(op, req)
	}
	return c.doJSON(op, req, out)
}

func (c *Client) doJSON(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &cascade.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &cascade.NetworkError{Op: op, Status: resp.StatusCode, Err: apiError(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &cascade.NetworkError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) doDiscard(op string, req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &cascade.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &cascade.NetworkError{Op: op, Status: resp.StatusCode, Err: apiError(resp.Body)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// apiError extracts the server's {"error": "..."} message, if any.
func apiError(r io.Reader) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || payload.Error == "" {
		return nil
	}
	return fmt.Errorf("%s", payload.Error)
}
