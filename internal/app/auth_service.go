package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/pkg/jwtutil"
	"lyrnios-backend/internal/repository"
)

const (
	ProviderGoogle = "google"

	DefaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type StateStore interface {
	Save(state string)
	Consume(state string) bool
}

type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type AuthService struct {
	userRepo      *repository.UserRepository
	oauth         *oauth2.Config
	userInfoURL   string
	states        StateStore
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	oauthConf *oauth2.Config,
	userInfoURL string,
	states StateStore,
	jwtSecret string,
	jwtExpiration time.Duration,
	log *zap.Logger,
) *AuthService {
	if userInfoURL == "" {
		userInfoURL = DefaultGoogleUserInfoURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:      userRepo,
		oauth:         oauthConf,
		userInfoURL:   userInfoURL,
		states:        states,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

// LoginURL returns the provider consent URL carrying a fresh one-time state.
func (s *AuthService) LoginURL(provider string) (string, error) {
	if provider != ProviderGoogle {
		return "", ErrUnsupportedProvider
	}

	state, err := newState()
	if err != nil {
		return "", err
	}
	s.states.Save(state)
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *AuthService) HandleCallback(ctx context.Context, provider, state, code string) (*AuthResult, error) {
	if provider != ProviderGoogle {
		return nil, ErrUnsupportedProvider
	}
	if !s.states.Consume(state) {
		return nil, ErrInvalidState
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code failed: %w", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.LoginWithProfile(ctx, profile)
}

// LoginWithProfile finds the user by provider id, creating it on first login
// and refreshing the profile fields otherwise, and issues a session token.
func (s *AuthService) LoginWithProfile(ctx context.Context, profile *GoogleProfile) (*AuthResult, error) {
	if profile == nil || profile.Sub == "" || profile.Email == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByGoogleID(ctx, profile.Sub)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			GoogleID: profile.Sub,
			Email:    profile.Email,
			Name:     profile.Name,
			Picture:  profile.Picture,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	} else if user.Email != profile.Email || user.Name != profile.Name || user.Picture != profile.Picture {
		user.Email = profile.Email
		user.Name = profile.Name
		user.Picture = profile.Picture
		if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.GoogleID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request failed: %w", err)
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read userinfo failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, string(raw))
	}

	var profile GoogleProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("parse userinfo failed: %w", err)
	}
	return &profile, nil
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
