package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials is the input to Login.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// SignupInput is the input to Signup.
type SignupInput struct {
	Name     string `validate:"required"`
	Phone    string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required"`
}

// ResetInput is the input to ResetPassword.
type ResetInput struct {
	Email       string `validate:"required,email"`
	OTP         string `validate:"required"`
	NewPassword string `validate:"required,min=6"`
}

// checkInput runs struct validation and converts failures to ValidationError.
func checkInput(v any) error {
	if err := validate.Struct(v); err != nil {
		var fields []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return &ValidationError{Msg: "invalid input: " + strings.Join(fields, ", ")}
		}
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

// Login signs in against the session provider and persists the session.
// The post-login profile ping is best effort and never fails the login.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := checkInput(creds); err != nil {
		return nil, err
	}

	result, err := s.auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	now := s.clock.Now()
	sess := &Session{
		UserID:         result.UserID,
		Token:          result.Token,
		DisplayName:    result.DisplayName,
		LoggedInAt:     now,
		LastActivityAt: now,
	}
	if err := s.sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	if err := s.backend.ProfilePing(ctx, sess.Token); err != nil {
		s.logger.Warn("post-login profile sync failed", "error", err)
	}

	s.logger.Info("logged in", "user", sess.UserID)
	return sess, nil
}

// Signup registers a new account with the session provider. Most providers
// require email confirmation before the first sign-in, so no session is
// persisted here.
func (s *Service) Signup(ctx context.Context, input SignupInput) error {
	if err := checkInput(input); err != nil {
		return err
	}
	if input.Password != input.Confirm {
		return &ValidationError{Msg: "passwords do not match"}
	}

	if _, err := s.auth.SignUp(ctx, input.Name, input.Phone, input.Email, input.Password); err != nil {
		return fmt.Errorf("signing up: %w", err)
	}
	return nil
}

// Logout destroys the local session state. Safe to call when logged out.
func (s *Service) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// RequestOTP starts the password reset flow for the given email.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{Msg: "a valid email is required"}
	}
	return s.backend.SendOTP(ctx, email)
}

// ResetPassword completes the password reset flow with the received OTP.
func (s *Service) ResetPassword(ctx context.Context, input ResetInput) error {
	if err := checkInput(input); err != nil {
		return err
	}
	return s.backend.ResetPassword(ctx, input.Email, input.OTP, input.NewPassword)
}
