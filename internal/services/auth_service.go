package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tajimart/internal/domain"
	"tajimart/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")
var ErrEmailTaken = errors.New("email already registered")

type AuthService struct {
	Users *repos.UserRepo
	Carts *repos.CartRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	// Fold the anonymous cart into the user's cart before rebinding.
	if s.Carts != nil {
		if err := s.Carts.MergeForLogin(u.ID, sid); err != nil {
			return nil, err
		}
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Register(sid, email, name, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := s.Users.Create(id, email, name, string(h), "USER"); err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, id); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
