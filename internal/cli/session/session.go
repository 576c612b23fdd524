package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// Phase is the session lifecycle state
type Phase int

const (
	// PhaseInitializing is the state before the durable record has been read
	PhaseInitializing Phase = iota
	// PhaseAnonymous means no session is active
	PhaseAnonymous
	// PhaseAuthenticated means a token and user are both present
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session. Phase, token and user are
// always swapped as a unit, so an authenticated snapshot can never be
// observed with only one of the two fields populated.
type Snapshot struct {
	Phase Phase
	Token string
	User  *client.User
}

// Initializing reports whether the durable record has not been read yet
func (s Snapshot) Initializing() bool {
	return s.Phase == PhaseInitializing
}

// IsAuthenticated holds iff both token and user are present
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the session user's role, or "" when anonymous
func (s Snapshot) Role() client.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// API is the slice of the HTTP client the store needs, kept as an interface
// so tests can stub the remote end without a network.
type API interface {
	SignIn(ctx context.Context, creds client.Credentials) (*client.AuthResponse, error)
	SignUp(ctx context.Context, reg client.Registration) (*client.AuthResponse, error)
	Me(ctx context.Context) (*client.User, error)
}

// Store owns the session: current user, token and last auth error. It is
// constructed once by the composition root and passed explicitly to whatever
// needs it. Transitions go through a generation counter so a completion that
// was superseded by a later operation is discarded instead of overwriting
// fresher state.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	gen     uint64
	errMsg  string
	storage Storage
	api     API
	log     zerolog.Logger
}

// New creates a session store in the Initializing phase
func New(storage Storage, api API, log zerolog.Logger) *Store {
	return &Store{
		snap:    Snapshot{Phase: PhaseInitializing},
		storage: storage,
		api:     api,
		log:     log,
	}
}

// Snapshot returns the current session view
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// IsAuthenticated reports whether a full session is active
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Err returns the last authentication error message, if any
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError clears only the error message, nothing else
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Initialize restores the session from durable storage. With no stored token
// or user it settles on Anonymous immediately. Otherwise the stored values
// are applied optimistically and then revalidated against /auth/me: a fresh
// user overwrites both copies, while a failed revalidation keeps the restored
// session active (degraded but usable offline; a 401 during the call tears it
// down through the unauthorized signal instead). The store is never left in
// the Initializing phase afterwards.
func (s *Store) Initialize(ctx context.Context) {
	token, tokenErr := s.storage.LoadToken()
	user, userErr := s.storage.LoadUser()

	if tokenErr != nil || userErr != nil || token == "" || user == nil {
		s.mu.Lock()
		s.gen++
		s.snap = Snapshot{Phase: PhaseAnonymous}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.snap = Snapshot{Phase: PhaseAuthenticated, Token: token, User: user}
	s.mu.Unlock()

	fresh, err := s.api.Me(ctx)
	if err != nil {
		// A 401 has already invalidated the session via the client's
		// unauthorized callback; anything else keeps the restored state.
		s.log.Debug().Err(err).Msg("Session revalidation failed, keeping restored session")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if err := s.storage.SaveUser(fresh); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist revalidated user")
	}
	s.snap = Snapshot{Phase: PhaseAuthenticated, Token: s.snap.Token, User: fresh}
}

// Login signs in with the given credentials. On success both token and user
// are persisted durably and applied in memory, and true is returned. On any
// failure the session and durable record are left untouched, the error
// message is recorded, and false is returned.
func (s *Store) Login(ctx context.Context, creds client.Credentials) bool {
	gen := s.begin()

	resp, err := s.api.SignIn(ctx, creds)
	if err != nil {
		s.setError(gen, client.ErrorMessage(err))
		return false
	}

	if resp.Token == "" || resp.User == nil {
		s.setError(gen, "sign-in response missing token or user")
		return false
	}

	return s.establish(gen, resp.Token, resp.User)
}

// Register creates an account. Same contract as Login, against the sign-up
// endpoint; the caller decides what to do with the resulting role.
func (s *Store) Register(ctx context.Context, reg client.Registration) bool {
	gen := s.begin()

	resp, err := s.api.SignUp(ctx, reg)
	if err != nil {
		s.setError(gen, client.ErrorMessage(err))
		return false
	}

	if resp.Token == "" || resp.User == nil {
		s.setError(gen, "sign-up response missing token or user")
		return false
	}

	return s.establish(gen, resp.Token, resp.User)
}

// Refresh re-fetches the current user and overwrites the stored copy. The
// session is left as-is when the fetch fails or a newer transition landed in
// the meantime.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.snap.IsAuthenticated() {
		s.mu.Unlock()
		return ErrNotFound
	}
	gen := s.gen
	s.mu.Unlock()

	fresh, err := s.api.Me(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || !s.snap.IsAuthenticated() {
		return nil
	}
	if err := s.storage.SaveUser(fresh); err != nil {
		return err
	}
	s.snap = Snapshot{Phase: PhaseAuthenticated, Token: s.snap.Token, User: fresh}
	return nil
}

// Logout clears the session. Synchronous, idempotent, no network call: both
// durable keys, the in-memory state and any pending error are cleared.
func (s *Store) Logout() {
	s.clear()
}

// Invalidate tears the session down after an unauthorized signal from the
// transport layer. The client has already removed the durable token; this
// clears the rest so memory and durable storage stay consistent.
func (s *Store) Invalidate() {
	s.clear()
}

func (s *Store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if err := s.storage.DeleteToken(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete stored token")
	}
	if err := s.storage.DeleteUser(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete stored user")
	}
	s.snap = Snapshot{Phase: PhaseAnonymous}
	s.errMsg = ""
}

// begin starts a mutating operation: bumps the generation so in-flight
// completions become stale, and clears the previous error. The session state
// itself is not touched until the operation succeeds.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.errMsg = ""
	return s.gen
}

// setError records the failure message unless a later operation superseded
// this one.
func (s *Store) setError(gen uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.errMsg = msg
}

// establish persists the new session durably and swaps it in atomically.
// Returns false when superseded or when the durable write fails; in the
// failure case the token write is rolled back so the two keys stay in step.
func (s *Store) establish(gen uint64, token string, user *client.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.log.Debug().Msg("Discarding stale sign-in result")
		return false
	}

	if err := s.storage.SaveToken(token); err != nil {
		s.errMsg = "failed to persist session: " + err.Error()
		return false
	}
	if err := s.storage.SaveUser(user); err != nil {
		if delErr := s.storage.DeleteToken(); delErr != nil {
			s.log.Warn().Err(delErr).Msg("Failed to roll back token after user write failure")
		}
		s.errMsg = "failed to persist session: " + err.Error()
		return false
	}

	s.snap = Snapshot{Phase: PhaseAuthenticated, Token: token, User: user}
	return true
}
