// Package auth owns the client session: credential checks against the user
// table, registration, and persisting the signed-in user to durable storage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alextreichler/humbleautos/internal/delay"
	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	// ErrUserNotFound means the credential and user tables disagree. It is a defect.
	ErrUserNotFound = errors.New("user not found")
)

// Account pairs a user with a bcrypt hash of their password.
type Account struct {
	User         models.User
	PasswordHash []byte
}

// NewAccount hashes password with the given bcrypt cost.
func NewAccount(user models.User, password string, cost int) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	return Account{User: user, PasswordHash: hash}, nil
}

type RegisterInput struct {
	Username        string `json:"username" validate:"min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

var registerMessages = map[string]string{
	"username":        "Username must be at least 3 characters",
	"email":           "Please enter a valid email address",
	"password":        "Password must be at least 6 characters",
	"confirmPassword": "Passwords don't match",
}

type Options struct {
	// Latency is waited out before Login and Register take effect.
	Latency    time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Store is the identity store of one client.
type Store struct {
	kv   store.KV
	opts Options

	mu          sync.RWMutex
	users       []models.User
	credentials map[string][]byte // email -> bcrypt hash
	session     *models.User
}

// New builds the user and credential tables from accounts and restores the
// session kept under store.UserKey. A stored payload that is not a user is
// dropped and the store starts signed out.
func New(ctx context.Context, kv store.KV, accounts []Account, opts Options) *Store {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		kv:          kv,
		opts:        opts,
		credentials: make(map[string][]byte, len(accounts)),
	}
	for _, a := range accounts {
		s.users = append(s.users, a.User)
		s.credentials[a.User.Email] = append([]byte(nil), a.PasswordHash...)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.kv.Get(ctx, store.UserKey)
	if err != nil {
		return
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil || u.ID == "" || u.Email == "" {
		_ = s.kv.Delete(ctx, store.UserKey)
		return
	}
	s.session = &u
}

// Current returns the signed-in user.
func (s *Store) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.User{}, false
	}
	return *s.session, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Store) IsAdmin() bool {
	u, ok := s.Current()
	return ok && u.IsAdmin
}

// Users returns a copy of the user table.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.credentials[email]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	user, ok := s.findLocked(email)
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	if err := s.startSessionLocked(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := models.Validate(in, registerMessages); err != nil {
		return models.User{}, err
	}
	// bcrypt runs outside the lock.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := delay.Wait(ctx, s.opts.Latency); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.credentials[in.Email]; taken {
		return models.User{}, ErrEmailInUse
	}
	user := models.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Username:  in.Username,
		IsAdmin:   false,
		CreatedAt: s.opts.Now().UTC(),
	}
	s.users = append(s.users, user)
	s.credentials[in.Email] = hash
	if err := s.startSessionLocked(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout clears the session and its stored copy.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := s.kv.Delete(ctx, store.UserKey); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	return nil
}

func (s *Store) findLocked(email string) (models.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) startSessionLocked(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, store.UserKey, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	s.session = &user
	return nil
}
