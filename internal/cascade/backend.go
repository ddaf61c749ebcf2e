package cascade

import (
	"context"
	"io"
	"time"
)

// CheckTodayResult is the remote verdict on whether a submission exists for
// the current day.
type CheckTodayResult struct {
	Submitted   bool
	Description string
	Files       Files
}

// Upload is one file attached to a submission or avatar update.
type Upload struct {
	Name    string
	Content []byte
}

// SubmissionUpload carries the multipart body of a submit call.
// Nil slots are omitted from the request.
type SubmissionUpload struct {
	HTML        *Upload
	CSS         *Upload
	JS          *Upload
	Description string
}

// Backend is the companion REST API. It is the remote source of truth for
// submissions, activity, and profile data. Implementations must return
// *NetworkError for transport failures and non-2xx responses so callers can
// distinguish background-tolerable failures from auth rejections.
type Backend interface {
	// CheckToday asks whether a submission exists on or after the given
	// instant (the local start of day, expressed as an absolute time).
	CheckToday(ctx context.Context, token string, startOfDay time.Time) (*CheckTodayResult, error)

	// SubmitToday creates or overwrites today's submission.
	SubmitToday(ctx context.Context, token string, sub SubmissionUpload) error

	// Consistency returns every day the user submitted on.
	Consistency(ctx context.Context, token string) ([]ActivityRecord, error)

	// GalleryMonth returns the persisted submissions of one month,
	// with file URLs.
	GalleryMonth(ctx context.Context, token string, year int, month time.Month) ([]GalleryItem, error)

	// FullProfile returns profile details, stats and activity.
	FullProfile(ctx context.Context, token string) (*Profile, error)

	// UpdateAbout persists the bio text.
	UpdateAbout(ctx context.Context, token string, about string) error

	// UpdateAvatar uploads a new avatar image and returns its URL.
	UpdateAvatar(ctx context.Context, token string, avatar Upload) (string, error)

	// ProfilePing is the post-login sync call. Best effort.
	ProfilePing(ctx context.Context, token string) error

	// SendOTP requests a one-time password for the reset flow.
	SendOTP(ctx context.Context, email string) error

	// ResetPassword completes the reset flow.
	ResetPassword(ctx context.Context, email, otp, newPassword string) error

	// FetchFile downloads a stored submission file by its URL.
	FetchFile(ctx context.Context, url string, w io.Writer) error
}

// AuthResult is what the session provider returns on a successful sign-in.
type AuthResult struct {
	UserID      string
	Token       string
	DisplayName string
}

// AuthProvider is the external session provider that issues bearer tokens.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, name, phone, email, password string) (*AuthResult, error)
}
