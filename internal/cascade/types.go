package cascade

import (
	"errors"
	"fmt"
	"time"
)

// Slot identifies one of the three upload slots of a daily submission.
type Slot string

const (
	SlotHTML Slot = "html"
	SlotCSS  Slot = "css"
	SlotJS   Slot = "js"
)

// Slots lists the upload slots in display order.
var Slots = []Slot{SlotHTML, SlotCSS, SlotJS}

// FileRef describes one uploaded file. URL is empty until the server has
// persisted the file and reported where it lives.
type FileRef struct {
	Name string
	URL  string
}

// Files holds the per-slot file references of a submission.
// A nil entry means the slot was not uploaded.
type Files struct {
	HTML *FileRef
	CSS  *FileRef
	JS   *FileRef
}

// Slot returns the reference for the given slot.
func (f Files) Slot(s Slot) *FileRef {
	switch s {
	case SlotHTML:
		return f.HTML
	case SlotCSS:
		return f.CSS
	case SlotJS:
		return f.JS
	}
	return nil
}

// SetSlot replaces the reference for the given slot.
func (f *Files) SetSlot(s Slot, ref *FileRef) {
	switch s {
	case SlotHTML:
		f.HTML = ref
	case SlotCSS:
		f.CSS = ref
	case SlotJS:
		f.JS = ref
	}
}

// Empty returns true if no slot has a file.
func (f Files) Empty() bool {
	return f.HTML == nil && f.CSS == nil && f.JS == nil
}

// DayState is the lifecycle state of the current day.
type DayState int

const (
	// StatePending — the day has not been started.
	StatePending DayState = iota
	// StateStarted — a session is open but nothing has been submitted,
	// or a previous submission was reopened for editing.
	StateStarted
	// StateSubmitted — a submission is recorded (locally or remotely).
	StateSubmitted
)

func (s DayState) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateSubmitted:
		return "submitted"
	default:
		return "pending"
	}
}

// Phase records how far the sync reconciler got.
type Phase int

const (
	// PhaseIdle — no optimistic cache data was available (or no session).
	PhaseIdle Phase = iota
	// PhaseOptimistic — cached data was shown; verification did not complete.
	PhaseOptimistic
	// PhaseVerified — the remote source of truth confirmed the shown state.
	PhaseVerified
	// PhaseReconciled — cache and remote disagreed; the cache was purged
	// and the state corrected to match the remote.
	PhaseReconciled
)

func (p Phase) String() string {
	switch p {
	case PhaseOptimistic:
		return "optimistic"
	case PhaseVerified:
		return "verified"
	case PhaseReconciled:
		return "reconciled"
	default:
		return "idle"
	}
}

// DayStatus is the reconciler's answer to "did the current user submit today?".
type DayStatus struct {
	Date        string // local calendar day, YYYY-MM-DD
	State       DayState
	Phase       Phase
	Files       Files
	Description string
	FromCache   bool  // the shown data came from the local cache
	VerifyErr   error // non-nil when verification failed and cached state was kept
}

// ActivityRecord is a server-owned record that a submission exists for a day.
type ActivityRecord struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// GalleryItem is one persisted submission as returned by the gallery endpoint.
type GalleryItem struct {
	ID        string    `json:"id"`
	Date      string    `json:"-"` // derived from CreatedAt, YYYY-MM-DD
	HTMLFile  string    `json:"html_file"`
	CSSFile   string    `json:"css_file"`
	JSFile    string    `json:"js_file"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the payload of the full-profile endpoint.
type Profile struct {
	Details  ProfileDetails  `json:"details"`
	Stats    ProfileStats    `json:"stats"`
	Activity ProfileActivity `json:"activity"`
}

type ProfileDetails struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	About     string `json:"about"`
	AvatarURL string `json:"avatar_url"`
}

type ProfileStats struct {
	Streak  int `json:"streak"`
	Monthly int `json:"monthly"`
}

type ProfileActivity struct {
	Dates  []string `json:"dates"`
	Recent []string `json:"recent"`
}

// ErrNoSession is returned by operations that require an authenticated
// session when none is active.
var ErrNoSession = errors.New("no active session: log in first")

// ValidationError reports invalid user input. It is shown inline and never
// results in a network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NetworkError reports a failed call to the remote backend: either a
// transport failure or a non-2xx response.
type NetworkError struct {
	Op     string // which call failed, e.g. "check-today"
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuthStatus reports whether the failure was an auth rejection.
func (e *NetworkError) IsAuthStatus() bool {
	return e.Status == 401 || e.Status == 403
}
