package cascade_test

import (
	"context"
	"errors"
	"testing"

	"cascadelog/internal/cascade"
	"cascadelog/internal/testutil"
)

func TestService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches the full profile", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()
		f.Backend.Profile = &cascade.Profile{
			Details: cascade.ProfileDetails{Name: "Dev", Email: "dev@example.com"},
			Stats:   cascade.ProfileStats{Streak: 4, Monthly: 11},
		}

		p, err := f.Service.FetchProfile(ctx)
		if err != nil {
			t.Fatalf("FetchProfile() error = %v", err)
		}
		if p.Details.Name != "Dev" || p.Stats.Streak != 4 {
			t.Errorf("profile = %+v, want backend payload", p)
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		if _, err := f.Service.FetchProfile(ctx); !errors.Is(err, cascade.ErrNoSession) {
			t.Errorf("FetchProfile() error = %v, want ErrNoSession", err)
		}
	})

	t.Run("updates the about text", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()

		if err := f.Service.UpdateAbout(ctx, "CSS person"); err != nil {
			t.Fatalf("UpdateAbout() error = %v", err)
		}
		if f.Backend.LastAbout != "CSS person" {
			t.Errorf("LastAbout = %q, want %q", f.Backend.LastAbout, "CSS person")
		}
	})

	t.Run("rejects an empty avatar upload", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()

		_, err := f.Service.UpdateAvatar(ctx, cascade.Upload{Name: "me.png"})
		var verr *cascade.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("UpdateAvatar() error = %v, want ValidationError", err)
		}
	})

	t.Run("uploads an avatar and returns its URL", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()
		f.Backend.AvatarURL = "https://files/avatars/me.png"

		url, err := f.Service.UpdateAvatar(ctx, cascade.Upload{Name: "me.png", Content: []byte{1, 2, 3}})
		if err != nil {
			t.Fatalf("UpdateAvatar() error = %v", err)
		}
		if url != "https://files/avatars/me.png" {
			t.Errorf("url = %q, want stored location", url)
		}
	})
}
