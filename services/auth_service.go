package services

import (
	"context"
	"errors"
	"log"

	"journal-desk/models"
)

type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context, owner string) error
	// Forget drops owner's desk state without calling the backend.
	Forget(owner string)
}

type authService struct {
	api      RESTClient
	desks    *DeskRegistry
	sessions *SessionManager
}

func NewAuthService(api RESTClient, desks *DeskRegistry, sessions *SessionManager) AuthService {
	return &authService{api: api, desks: desks, sessions: sessions}
}

// Login forwards the credentials to the backend and relays its answer.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var res models.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", req, &res); err != nil {
		return nil, err
	}
	if res.User.ID == "" {
		return nil, errors.New("invalid credentials")
	}
	return &res, nil
}

func (s *authService) Profile(ctx context.Context) (*models.User, error) {
	var res models.ProfileResponse
	if _, err := s.api.Get(ctx, "/auth/check-auth", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout ends the backend session and drops everything the desk holds for
// owner. Saved drafts are kept.
func (s *authService) Logout(ctx context.Context, owner string) error {
	err := s.api.Post(ctx, "/auth/logout", nil, nil)
	if err != nil {
		log.Printf("[AuthService] backend logout for %s: %v", owner, err)
	}
	s.Forget(owner)
	return err
}

func (s *authService) Forget(owner string) {
	s.sessions.CloseOwner(owner)
	s.desks.Drop(owner)
}
