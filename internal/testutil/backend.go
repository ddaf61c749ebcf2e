package testutil

import (
	"context"
	"fmt"
	"io"
	"time"

	"cascadelog/internal/cascade"
)

// StubBackend is a scriptable cascade.Backend. Each response field is
// returned as-is; the Err fields override with a failure. Calls are counted
// so tests can assert which endpoints were hit.
type StubBackend struct {
	CheckTodayResult *cascade.CheckTodayResult
	CheckTodayErr    error
	SubmitErr        error
	Activity         []cascade.ActivityRecord
	ActivityErr      error
	GalleryItems     []cascade.GalleryItem
	GalleryErr       error
	Profile          *cascade.Profile
	ProfileErr       error
	AvatarURL        string
	PingErr          error
	Files            map[string][]byte // keyed by URL, served by FetchFile

	Calls      map[string]int
	LastSubmit *cascade.SubmissionUpload
	LastAbout  string
}

var _ cascade.Backend = (*StubBackend)(nil)

// NewStubBackend creates a StubBackend whose check-today reports no
// submission.
func NewStubBackend() *StubBackend {
	return &StubBackend{
		CheckTodayResult: &cascade.CheckTodayResult{},
		Calls:            make(map[string]int),
	}
}

func (b *StubBackend) record(op string) {
	if b.Calls == nil {
		b.Calls = make(map[string]int)
	}
	b.Calls[op]++
}

func (b *StubBackend) CheckToday(_ context.Context, _ string, _ time.Time) (*cascade.CheckTodayResult, error) {
	b.record("check-today")
	if b.CheckTodayErr != nil {
		return nil, b.CheckTodayErr
	}
	return b.CheckTodayResult, nil
}

func (b *StubBackend) SubmitToday(_ context.Context, _ string, sub cascade.SubmissionUpload) error {
	b.record("submit")
	if b.SubmitErr != nil {
		return b.SubmitErr
	}
	b.LastSubmit = &sub
	return nil
}

func (b *StubBackend) Consistency(_ context.Context, _ string) ([]cascade.ActivityRecord, error) {
	b.record("consistency")
	if b.ActivityErr != nil {
		return nil, b.ActivityErr
	}
	return b.Activity, nil
}

func (b *StubBackend) GalleryMonth(_ context.Context, _ string, _ int, _ time.Month) ([]cascade.GalleryItem, error) {
	b.record("gallery")
	if b.GalleryErr != nil {
		return nil, b.GalleryErr
	}
	return b.GalleryItems, nil
}

func (b *StubBackend) FullProfile(_ context.Context, _ string) (*cascade.Profile, error) {
	b.record("full-profile")
	if b.ProfileErr != nil {
		return nil, b.ProfileErr
	}
	return b.Profile, nil
}

func (b *StubBackend) UpdateAbout(_ context.Context, _ string, about string) error {
	b.record("update-about")
	b.LastAbout = about
	return nil
}

func (b *StubBackend) UpdateAvatar(_ context.Context, _ string, _ cascade.Upload) (string, error) {
	b.record("update-avatar")
	return b.AvatarURL, nil
}

func (b *StubBackend) ProfilePing(_ context.Context, _ string) error {
	b.record("profile-ping")
	return b.PingErr
}

func (b *StubBackend) SendOTP(_ context.Context, _ string) error {
	b.record("send-otp")
	return nil
}

func (b *StubBackend) ResetPassword(_ context.Context, _, _, _ string) error {
	b.record("reset-password")
	return nil
}

func (b *StubBackend) FetchFile(_ context.Context, url string, w io.Writer) error {
	b.record("fetch-file")
	data, ok := b.Files[url]
	if !ok {
		return fmt.Errorf("no file at %s", url)
	}
	_, err := w.Write(data)
	return err
}

// StubAuth is a scriptable cascade.AuthProvider.
type StubAuth struct {
	Result    *cascade.AuthResult
	SignInErr error
	SignUpErr error
	SignIns   int
	SignUps   int
	LastEmail string
	LastName  string
	LastPhone string
}

var _ cascade.AuthProvider = (*StubAuth)(nil)

// NewStubAuth creates a StubAuth that signs everyone in as user-1.
func NewStubAuth() *StubAuth {
	return &StubAuth{
		Result: &cascade.AuthResult{
			UserID:      "user-1",
			Token:       "token-1",
			DisplayName: "Test User",
		},
	}
}

func (a *StubAuth) SignIn(_ context.Context, email, _ string) (*cascade.AuthResult, error) {
	a.SignIns++
	a.LastEmail = email
	if a.SignInErr != nil {
		return nil, a.SignInErr
	}
	return a.Result, nil
}

func (a *StubAuth) SignUp(_ context.Context, name, phone, email, _ string) (*cascade.AuthResult, error) {
	a.SignUps++
	a.LastName = name
	a.LastPhone = phone
	a.LastEmail = email
	if a.SignUpErr != nil {
		return nil, a.SignUpErr
	}
	return a.Result, nil
}
