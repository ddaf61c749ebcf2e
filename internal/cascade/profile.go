package cascade

import (
	"context"
	"fmt"
)

// FetchProfile returns the full profile: details, stats, and activity.
func (s *Service) FetchProfile(ctx context.Context) (*Profile, error) {
	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	profile, err := s.backend.FullProfile(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return profile, nil
}

// UpdateAbout persists the bio text.
func (s *Service) UpdateAbout(ctx context.Context, about string) error {
	sess, err := s.CurrentSession()
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}
	return s.backend.UpdateAbout(ctx, sess.Token, about)
}

// UpdateAvatar uploads a new avatar image and returns its URL.
func (s *Service) UpdateAvatar(ctx context.Context, avatar Upload) (string, error) {
	if len(avatar.Content) == 0 {
		return "", &ValidationError{Msg: "avatar file is empty"}
	}
	sess, err := s.CurrentSession()
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ErrNoSession
	}
	url, err := s.backend.UpdateAvatar(ctx, sess.Token, avatar)
	if err != nil {
		return "", err
	}
	s.logger.Info("avatar updated", "url", url)
	return url, nil
}
