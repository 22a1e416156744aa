package services

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"cellar/app/mailer"
	"cellar/app/models"
	"cellar/app/password"
	"cellar/app/repo"
	"cellar/app/token"
	"cellar/global"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike
	// so responses never reveal whether an address is registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("the email address you have entered is already associated with another account")
	ErrTokenInvalid       = errors.New("password reset token is invalid or has expired")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("passwords must match")
	ErrInvalidEmail       = errors.New("email is not valid")
	ErrMissingFields      = errors.New("missing required fields")
)

const MinPasswordLen = 8

// dummyHash is a bcrypt hash of an unguessable value; it is verified against
// submitted passwords when no user exists so lookup misses cost the same as
// hash mismatches.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStore is the persistence contract the flows run against.
type UserStore interface {
	Create(u *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByValidResetToken(tok string, now time.Time) (*models.User, error)
	Save(u *models.User) error
	ConsumeResetToken(tok string, now time.Time, newHash string) (*models.User, error)
	Count() (int64, error)
}

type UserService struct {
	users    UserStore
	issuer   *token.Issuer
	sender   mailer.Sender
	siteName string
	now      func() time.Time
}

func NewUserService(users UserStore, issuer *token.Issuer, sender mailer.Sender, siteName string) *UserService {
	return &UserService{users: users, issuer: issuer, sender: sender, siteName: siteName, now: time.Now}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// SetPassword hashes plain and stores the hash on u. It is the only place a
// password field gets written; saving a user never rehashes.
func SetPassword(u *models.User, plain string) error {
	h, err := password.Hash(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = h
	return nil
}

func (s *UserService) Register(name, email, plain string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return nil, ErrMissingFields
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(plain) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	u := &models.User{Name: name, Email: email, Role: "user"}
	if err := SetPassword(u, plain); err != nil {
		return nil, err
	}
	if err := s.users.Create(u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate validates a login attempt. Validation failures short-circuit
// before any store access; lookup misses and hash mismatches are
// indistinguishable to the caller.
func (s *UserService) Authenticate(email, plain string) (*models.User, error) {
	email = NormalizeEmail(email)
	if !validEmail(email) || plain == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			password.Verify(plain, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(plain, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// RequestPasswordReset issues a reset token and mails the reset link. An
// unknown email returns nil after a hash burn so the outward response and
// its timing match the known-email path. A newly issued token overwrites any
// earlier pending one.
func (s *UserService) RequestPasswordReset(email, baseURL string) error {
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			password.Verify(email, dummyHash)
			return nil
		}
		return err
	}

	tok, expires, err := s.issuer.Issue()
	if err != nil {
		return err
	}
	u.PasswordResetToken = &tok
	u.PasswordResetExpires = &expires
	if err := s.users.Save(u); err != nil {
		return err
	}

	resetURL := strings.TrimRight(baseURL, "/") + "/reset/" + tok
	mailer.Dispatch(s.sender, mailer.ResetMessage(u.Email, s.siteName, resetURL))
	return nil
}

// UserForResetToken resolves the GET phase of a reset link. No state changes.
func (s *UserService) UserForResetToken(tok string) (*models.User, error) {
	if tok == "" {
		return nil, ErrTokenInvalid
	}
	u, err := s.users.FindByValidResetToken(tok, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return u, nil
}

// ResetPassword consumes the token and installs the new password. The token
// check and the clear happen as one conditional write, so a token consumed
// by a concurrent request fails here even after passing the GET phase.
func (s *UserService) ResetPassword(tok, plain, confirm string) (*models.User, error) {
	if len(plain) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if plain != confirm {
		return nil, ErrPasswordMismatch
	}
	newHash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}
	u, err := s.users.ConsumeResetToken(tok, s.now(), newHash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	mailer.Dispatch(s.sender, mailer.PasswordChangedMessage(u.Email, s.siteName))
	return u, nil
}

// EnsureAdmin creates the initial admin account when no user with that email
// exists. Used by the setup wizard.
func (s *UserService) EnsureAdmin(name, email, plain string) error {
	email = NormalizeEmail(email)
	if _, err := s.users.FindByEmail(email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	u, err := s.Register(name, email, plain)
	if err != nil {
		return err
	}
	u.Role = "admin"
	if err := s.users.Save(u); err != nil {
		return err
	}
	global.Logger.Info().Str("email", email).Msg("admin account created")
	return nil
}

// HasUsers reports whether any account exists; false means first run.
func (s *UserService) HasUsers() (bool, error) {
	n, err := s.users.Count()
	return n > 0, err
}
