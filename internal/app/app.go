// Package app is the application layer between the CLI and the cascade
// service. It constructs all dependencies from config, exposes high-level
// operations that accept raw string paths, and manages resource lifecycles
// on Close.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cascadelog/internal/api"
	"cascadelog/internal/cache"
	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
	"cascadelog/internal/mirror"
	"cascadelog/internal/playground"
	"cascadelog/internal/session"
)

// App wires the HTTP client, the local cache, the session store, and the
// mirror into a cascade.Service and exposes the CLI-facing operations.
type App struct {
	cfg     *config.Config
	client  *api.Client
	cache   cascade.Cache
	mirror  cascade.Mirror
	service *cascade.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Submit", "Gallery").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	client := api.NewClient(cfg.API)

	c, err := cache.NewCacheFromConfig(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	sessions := session.NewFileStore(cfg.Session)

	m, err := mirror.NewMirrorFromConfig(cfg.Mirror)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating mirror: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, parseLevel(cfg.LogLevel))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With("op", operation)

	idleLimit := time.Duration(cfg.Session.IdleLimitMinutes) * time.Minute
	svc := cascade.NewService(client, client, c, sessions, m,
		&slogAdapter{l: logger}, cascade.RealClock{}, cascade.UUIDGenerator{}, idleLimit)

	return &App{
		cfg:     cfg,
		client:  client,
		cache:   c,
		mirror:  m,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service exposes the underlying cascade service.
func (a *App) Service() *cascade.Service { return a.service }

// touch records activity after a successful user-facing operation so the
// inactivity window restarts. Errors are non-fatal.
func (a *App) touch() {
	a.service.TouchSession()
}

// Login authenticates and stores the session locally.
func (a *App) Login(ctx context.Context, email, password string) (*cascade.Session, error) {
	return a.service.Login(ctx, cascade.Credentials{Email: email, Password: password})
}

// Signup registers a new account. The user logs in separately afterwards.
func (a *App) Signup(ctx context.Context, name, email, phone, password, confirm string) error {
	return a.service.Signup(ctx, cascade.SignupInput{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: password,
		Confirm:  confirm,
	})
}

// Logout destroys the local session.
func (a *App) Logout() error {
	return a.service.Logout()
}

// RequestOTP asks the backend to mail a one-time password for a reset.
func (a *App) RequestOTP(ctx context.Context, email string) error {
	return a.service.RequestOTP(ctx, email)
}

// ResetPassword completes a password reset with the mailed OTP.
func (a *App) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return a.service.ResetPassword(ctx, cascade.ResetInput{
		Email:       email,
		OTP:         otp,
		NewPassword: newPassword,
	})
}

// Today reconciles the local cache against the backend and returns the
// current day's status.
func (a *App) Today(ctx context.Context) (*cascade.DayStatus, error) {
	status, err := a.service.CheckToday(ctx)
	if err == nil {
		a.touch()
	}
	return status, err
}

// StartDay marks today's challenge as in progress.
func (a *App) StartDay(ctx context.Context) (*cascade.DayStatus, error) {
	status, err := a.service.StartDay(ctx)
	if err == nil {
		a.touch()
	}
	return status, err
}

// Submit reads the given slot files from disk and uploads them as today's
// submission. Empty paths skip their slot; at least one must be set.
func (a *App) Submit(ctx context.Context, htmlPath, cssPath, jsPath, description string) (*cascade.DayStatus, error) {
	var sub cascade.SubmissionUpload
	slots := []struct {
		path string
		dest **cascade.Upload
	}{
		{htmlPath, &sub.HTML},
		{cssPath, &sub.CSS},
		{jsPath, &sub.JS},
	}
	for _, slot := range slots {
		if slot.path == "" {
			continue
		}
		content, err := os.ReadFile(slot.path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", slot.path, err)
		}
		*slot.dest = &cascade.Upload{Name: filepath.Base(slot.path), Content: content}
	}
	sub.Description = description

	status, err := a.service.Submit(ctx, sub)
	if err == nil {
		a.touch()
	}
	return status, err
}

// Edit reopens today's submitted entry for local editing.
func (a *App) Edit(ctx context.Context) error {
	err := a.service.Edit(ctx)
	if err == nil {
		a.touch()
	}
	return err
}

// Delete removes today's entry from the local cache. The remote record is
// untouched. Returns false when there was nothing to delete.
func (a *App) Delete(ctx context.Context) (bool, error) {
	deleted, err := a.service.Delete(ctx)
	if err == nil {
		a.touch()
	}
	return deleted, err
}

// Consistency returns the year's activity report.
func (a *App) Consistency(ctx context.Context, year int) (*cascade.ConsistencyReport, error) {
	report, err := a.service.Consistency(ctx, year)
	if err == nil {
		a.touch()
	}
	return report, err
}

// Gallery returns the classified days of a month with their submissions.
func (a *App) Gallery(ctx context.Context, year int, month time.Month) ([]cascade.GalleryDay, error) {
	days, err := a.service.GalleryMonth(ctx, year, month)
	if err == nil {
		a.touch()
	}
	return days, err
}

// SyncGallery archives a month of submissions into the configured mirror.
func (a *App) SyncGallery(ctx context.Context, year int, month time.Month) (*cascade.SyncResult, error) {
	result, err := a.service.SyncGallery(ctx, year, month)
	if err == nil {
		a.touch()
	}
	return result, err
}

// Profile fetches the full profile view.
func (a *App) Profile(ctx context.Context) (*cascade.Profile, error) {
	profile, err := a.service.FetchProfile(ctx)
	if err == nil {
		a.touch()
	}
	return profile, err
}

// UpdateAbout replaces the profile's about text.
func (a *App) UpdateAbout(ctx context.Context, about string) error {
	err := a.service.UpdateAbout(ctx, about)
	if err == nil {
		a.touch()
	}
	return err
}

// UpdateAvatar reads the image at path and uploads it as the new avatar.
// Returns the public URL of the stored image.
func (a *App) UpdateAvatar(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	url, err := a.service.UpdateAvatar(ctx, cascade.Upload{
		Name:    filepath.Base(path),
		Content: content,
	})
	if err == nil {
		a.touch()
	}
	return url, err
}

// Playground serves a live preview of dir until ctx is cancelled or the
// inactivity guard fires. Requires an active session; browser requests count
// as activity and restart the countdown. When the guard fires the session is
// destroyed and the server shuts down.
func (a *App) Playground(ctx context.Context, dir, addr string) error {
	sess, err := a.service.CurrentSession()
	if err != nil {
		return err
	}
	if sess == nil {
		return cascade.ErrNoSession
	}

	if dir == "" {
		dir = a.cfg.Playground.Dir
	}
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}
	if addr == "" {
		addr = a.cfg.Playground.Addr
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	guard := session.NewGuard(a.service.IdleLimit(), func() {
		a.service.Logout()
		cancel()
	})
	guard.Arm()
	defer guard.Stop()

	srv := playground.NewServer(dir, a.service.Logger(), func() {
		guard.Reset()
		a.touch()
	})

	err = srv.Run(runCtx, addr)
	if guard.Fired() {
		return fmt.Errorf("session ended after %s of inactivity", a.service.IdleLimit())
	}
	return err
}

// Close releases the cache connection and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.cache.Close(); err != nil {
		firstErr = fmt.Errorf("closing cache: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
