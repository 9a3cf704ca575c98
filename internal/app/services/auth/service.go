package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainauth "gramstay/internal/domain/auth"
	domainuser "gramstay/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrRoleNotAllowed     = errors.New("auth: role cannot be self-assigned")
)

// PasswordHasher abstracts the hash scheme so the service never sees raw
// bcrypt details.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// TokenGenerator produces opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

const defaultSessionTTL = 30 * 24 * time.Hour

// Service handles registration, login and session resolution. Sessions are
// server-side records keyed by an opaque bearer token.
type Service struct {
	Users    domainuser.Repository
	Sessions domainauth.SessionStore
	Hasher   PasswordHasher
	Tokens   TokenGenerator
	TTL      time.Duration
	IDGen    func() string
	Now      func() time.Time
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Role     domainuser.Role
}

// Register creates a user account. Tourists and hosts may self-register;
// admin accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domainuser.User, error) {
	role := params.Role
	if role == "" {
		role = domainuser.RoleTourist
	}
	if role == domainuser.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	email := domainuser.NormalizeEmail(params.Email)
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(s.id()),
		Email:        email,
		Name:         params.Name,
		PasswordHash: hash,
		Roles:        []domainuser.Role{role},
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and opens a session. Lookup and verify
// failures collapse into one error so callers cannot probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*domainauth.Session, *domainuser.User, error) {
	u, err := s.Users.ByEmail(ctx, domainuser.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := s.Hasher.Verify(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: u.ID,
		Roles:  u.Roles,
		TTL:    s.ttl(),
		Now:    s.now(),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, u, nil
}

// Resolve maps a bearer token to a live session.
func (s *Service) Resolve(ctx context.Context, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, domainauth.ErrSessionNotFound
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

// Logout revokes one session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultSessionTTL
}

func (s *Service) id() string {
	if s.IDGen != nil {
		return s.IDGen()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
