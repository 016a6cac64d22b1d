// ABOUTME: User accounts and the single active session, persisted as whole documents
// ABOUTME: Registration, credential checks, profile edits, login and logout

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pinoyflex/pinoyflex/internal/auth"
	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// Account rules.
const (
	MinUsernameLength = 3
	MinPasswordLength = 4
	DefaultAvatar     = "/avatars/blank.png"
)

// UserStore owns KeyUsers and KeySession.
type UserStore struct {
	mu      sync.Mutex
	users   *kv.Collection[[]User]
	session *kv.Collection[*Session]
	hasher  auth.PasswordHasher
	opts    options
}

// NewUserStore creates a user store on sub.
func NewUserStore(sub kv.Substrate, opts ...Option) *UserStore {
	o := buildOptions("users", opts)
	return &UserStore{
		users:   kv.NewCollection(sub, KeyUsers, func() []User { return []User{} }, o.logger),
		session: kv.NewCollection(sub, KeySession, func() *Session { return nil }, o.logger),
		hasher:  o.hasher,
		opts:    o,
	}
}

// findUser returns the index of username in users, or -1.
func findUser(users []User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}

// SessionFor builds the session projection of u.
func SessionFor(u User) Session {
	return Session{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// List returns all users.
func (s *UserStore) List(ctx context.Context) ([]User, error) {
	return s.users.Load(ctx)
}

// Get returns the user with the exact username.
func (s *UserStore) Get(ctx context.Context, username string) (User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return User{}, err
	}
	i := findUser(users, username)
	if i < 0 {
		return User{}, ErrUserNotFound
	}
	return users[i], nil
}

// SeedIfEmpty installs the bootstrap accounts when no users exist.
// Reports whether anything was written.
func (s *UserStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}

	seed := SampleUsers()
	for i := range seed {
		hashed, err := s.hasher.Hash(seed[i].Password)
		if err != nil {
			return false, err
		}
		seed[i].Password = hashed
	}

	if err := s.users.Save(ctx, seed); err != nil {
		return false, err
	}

	s.opts.logger.Info("seeded bootstrap users", "count", len(seed))
	return true, nil
}

// Register creates a user. The username is trimmed before validation.
// Returns ErrTooShort or ErrUsernameExists on invalid input.
func (s *UserStore) Register(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return User{}, fmt.Errorf("username must be at least %d characters: %w", MinUsernameLength, ErrTooShort)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return User{}, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrTooShort)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return User{}, err
	}
	if findUser(users, username) >= 0 {
		return User{}, ErrUsernameExists
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:       "u_" + shortUUID(),
		Username: username,
		Password: hashed,
		Avatar:   DefaultAvatar,
	}
	if err := s.users.Save(ctx, append(users, u)); err != nil {
		return User{}, err
	}

	s.opts.logger.Debug("registered user", "username", username)
	return u, nil
}

// Authenticate checks a username and password.
// Returns ErrUserNotFound or ErrWrongPassword on failure.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.Get(ctx, strings.TrimSpace(username))
	if err != nil {
		return User{}, err
	}
	if !s.hasher.Verify(u.Password, password) {
		return User{}, ErrWrongPassword
	}
	return u, nil
}

// applyProfile merges upd into u. A blank avatar resets to DefaultAvatar.
func applyProfile(u User, upd ProfileUpdate) User {
	if upd.Avatar != nil {
		u.Avatar = strings.TrimSpace(*upd.Avatar)
		if u.Avatar == "" {
			u.Avatar = DefaultAvatar
		}
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Username != nil {
		u.Username = strings.TrimSpace(*upd.Username)
	}
	return u
}

// UpdateProfile edits the user's avatar, bio or username. If the user is the
// active session, the session is rewritten so it reflects the new profile.
func (s *UserStore) UpdateProfile(ctx context.Context, username string, upd ProfileUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return User{}, err
	}
	i := findUser(users, username)
	if i < 0 {
		return User{}, ErrUserNotFound
	}

	updated := applyProfile(users[i], upd)
	if updated.Username != username {
		if utf8.RuneCountInString(updated.Username) < MinUsernameLength {
			return User{}, fmt.Errorf("username must be at least %d characters: %w", MinUsernameLength, ErrTooShort)
		}
		if findUser(users, updated.Username) >= 0 {
			return User{}, ErrUsernameExists
		}
	}

	users[i] = updated
	if err := s.users.Save(ctx, users); err != nil {
		return User{}, err
	}

	sess, err := s.session.Load(ctx)
	if err != nil {
		return User{}, err
	}
	if sess != nil && sess.Username == username {
		next := SessionFor(updated)
		if err := s.session.Save(ctx, &next); err != nil {
			return User{}, err
		}
		s.opts.logger.Debug("refreshed session after profile update", "username", updated.Username)
	}

	return updated, nil
}

// Login makes username the active session.
func (s *UserStore) Login(ctx context.Context, username string) (Session, error) {
	u, err := s.Get(ctx, username)
	if err != nil {
		return Session{}, err
	}

	sess := SessionFor(u)
	if err := s.session.Save(ctx, &sess); err != nil {
		return Session{}, err
	}

	s.opts.logger.Debug("logged in", "username", username)
	return sess, nil
}

// Logout clears the session.
func (s *UserStore) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// Session returns the active session, or nil when logged out.
func (s *UserStore) Session(ctx context.Context) (*Session, error) {
	sess, err := s.session.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Username == "" {
		return nil, nil
	}
	return sess, nil
}
