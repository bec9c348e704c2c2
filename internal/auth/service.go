package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("Invalid credentials")

type ServiceInterface interface {
	Login(username, password string) (*User, string, error)
	Logout(cookieToken string)
	Authenticate(cookieToken string) (*User, error)
}

type Service struct {
	users    UserRepository
	sessions SessionManagerInterface
	tokens   TokenManagerInterface
}

func NewService(users UserRepository, sessions SessionManagerInterface, tokens TokenManagerInterface) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Login checks the password and opens a session. The returned token is the
// signed cookie value.
func (s *Service) Login(username, password string) (*User, string, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	sessionToken, err := s.sessions.GenerateSessionToken(user.ID, defaultSessionDuration)
	if err != nil {
		return nil, "", err
	}
	signed, err := s.tokens.Sign(sessionToken, defaultSessionDuration)
	if err != nil {
		s.sessions.DeleteSessionToken(sessionToken)
		return nil, "", err
	}
	return user, signed, nil
}

// Logout revokes the session behind the cookie. A garbage cookie is not an
// error, there is just nothing to revoke.
func (s *Service) Logout(cookieToken string) {
	sessionToken, err := s.tokens.Parse(cookieToken)
	if err != nil {
		return
	}
	s.sessions.DeleteSessionToken(sessionToken)
}

// Authenticate resolves a cookie value to its user, rejecting tampered,
// expired and revoked sessions.
func (s *Service) Authenticate(cookieToken string) (*User, error) {
	sessionToken, err := s.tokens.Parse(cookieToken)
	if err != nil {
		return nil, err
	}
	userID, err := s.sessions.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(userID)
}

// SessionDuration is exposed so the handler can set a matching cookie max
// age.
func SessionDuration() time.Duration {
	return defaultSessionDuration
}
