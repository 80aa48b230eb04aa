package gcal

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/careloop/childcare-clinic/models"
	"github.com/careloop/childcare-clinic/utils"
)

// Records is the persistence surface the token store needs. The production
// implementation is GORM-backed; tests supply an in-memory one.
type Records interface {
	Get(ctx context.Context, doctorID uint) (*models.OAuthToken, error)
	Save(ctx context.Context, doctorID uint, token *oauth2.Token) error
	Clear(ctx context.Context, doctorID uint) error
}

// RefreshFunc exchanges an expired token for a fresh one.
type RefreshFunc func(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)

type tokenSource int

const (
	sourceDoctor tokenSource = iota
	sourceFallback
)

// TokenStore supplies valid Google credentials for a doctor, refreshing
// transparently. A process-wide fallback cache covers tokens obtained through
// an OAuth callback that could not be tied to a specific doctor.
type TokenStore struct {
	records Records
	refresh RefreshFunc

	mu         sync.RWMutex
	fallback   *oauth2.Token
	fallbackAt time.Time
}

// Tokens is the shared store, set up once at boot.
var Tokens *TokenStore

func InitTokens(gdb *gorm.DB) {
	Tokens = NewTokenStore(&gormRecords{db: gdb}, nil)
}

// NewTokenStore builds a store over the given records. A nil refresh falls
// back to the real OAuth2 refresh endpoint.
func NewTokenStore(records Records, refresh RefreshFunc) *TokenStore {
	if refresh == nil {
		refresh = func(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
			return OAuthConfig().TokenSource(ctx, token).Token()
		}
	}
	return &TokenStore{records: records, refresh: refresh}
}

// Store persists freshly obtained tokens for a doctor and mirrors them into
// the fallback cache.
func (s *TokenStore) Store(ctx context.Context, doctorID uint, token *oauth2.Token) error {
	if err := s.records.Save(ctx, doctorID, token); err != nil {
		return err
	}
	s.StoreFallback(token)
	return nil
}

// StoreFallback keeps tokens only in the process-wide cache. Degraded mode
// for callbacks whose state parameter could not be resolved to a doctor.
func (s *TokenStore) StoreFallback(token *oauth2.Token) {
	s.mu.Lock()
	s.fallback = token
	s.fallbackAt = time.Now()
	s.mu.Unlock()
}

// Valid returns usable credentials for the doctor, refreshing expired tokens
// when a refresh token exists. Refresh is attempted at most once; on failure
// the stored credentials are cleared and the doctor must re-authorize.
func (s *TokenStore) Valid(ctx context.Context, doctorID uint) (*oauth2.Token, *utils.Error) {
	token, src, appErr := s.lookup(ctx, doctorID)
	if appErr != nil {
		return nil, appErr
	}

	if token.Expiry.IsZero() || token.Expiry.After(time.Now()) {
		return token, nil
	}

	if token.RefreshToken == "" {
		s.clear(ctx, src, doctorID)
		return nil, utils.ReauthRequired("Google authorization expired")
	}

	fresh, err := s.refresh(ctx, token)
	if err != nil {
		s.clear(ctx, src, doctorID)
		return nil, utils.ReauthRequired("Google authorization expired and refresh failed")
	}

	merged := mergeTokens(token, fresh)
	if err := s.persist(ctx, src, doctorID, merged); err != nil {
		return nil, utils.Internal("Failed to persist refreshed tokens", err)
	}
	return merged, nil
}

// TokenStatus summarizes stored credentials for the oauth-status endpoint.
type TokenStatus struct {
	HasTokens       bool       `json:"hasTokens"`
	HasRefreshToken bool       `json:"hasRefreshToken"`
	IsExpired       bool       `json:"isExpired"`
	Source          string     `json:"authSource"`
	LastUpdated     *time.Time `json:"lastUpdated,omitempty"`
}

// Status reports what is stored for the doctor without refreshing anything.
func (s *TokenStore) Status(ctx context.Context, doctorID uint) (TokenStatus, error) {
	rec, err := s.records.Get(ctx, doctorID)
	if err != nil {
		return TokenStatus{}, err
	}
	if rec != nil && rec.Authorized && rec.AccessToken != "" {
		updated := rec.UpdatedAt
		return TokenStatus{
			HasTokens:       true,
			HasRefreshToken: rec.RefreshToken != "",
			IsExpired:       !rec.Expiry.IsZero() && rec.Expiry.Before(time.Now()),
			Source:          "database",
			LastUpdated:     &updated,
		}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fallback != nil {
		updated := s.fallbackAt
		return TokenStatus{
			HasTokens:       s.fallback.AccessToken != "",
			HasRefreshToken: s.fallback.RefreshToken != "",
			IsExpired:       !s.fallback.Expiry.IsZero() && s.fallback.Expiry.Before(time.Now()),
			Source:          "cache",
			LastUpdated:     &updated,
		}, nil
	}
	return TokenStatus{Source: "none"}, nil
}

func (s *TokenStore) lookup(ctx context.Context, doctorID uint) (*oauth2.Token, tokenSource, *utils.Error) {
	rec, err := s.records.Get(ctx, doctorID)
	if err != nil {
		return nil, 0, utils.Internal("Failed to load stored tokens", err)
	}
	if rec != nil && rec.Authorized && rec.AccessToken != "" {
		return recordToken(rec), sourceDoctor, nil
	}

	s.mu.RLock()
	fallback := s.fallback
	s.mu.RUnlock()
	if fallback != nil && fallback.AccessToken != "" {
		return fallback, sourceFallback, nil
	}

	return nil, 0, utils.AuthRequired("Google Calendar authorization required")
}

func (s *TokenStore) persist(ctx context.Context, src tokenSource, doctorID uint, token *oauth2.Token) error {
	if src == sourceDoctor {
		return s.records.Save(ctx, doctorID, token)
	}
	s.StoreFallback(token)
	return nil
}

func (s *TokenStore) clear(ctx context.Context, src tokenSource, doctorID uint) {
	if src == sourceDoctor {
		_ = s.records.Clear(ctx, doctorID)
		return
	}
	s.mu.Lock()
	s.fallback = nil
	s.mu.Unlock()
}

// mergeTokens overlays the refresh response on the previous token. Google
// omits the refresh token from refresh responses, so the old one is kept.
func mergeTokens(old, fresh *oauth2.Token) *oauth2.Token {
	merged := *fresh
	if merged.RefreshToken == "" {
		merged.RefreshToken = old.RefreshToken
	}
	return &merged
}

func recordToken(rec *models.OAuthToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Expiry:       rec.Expiry,
	}
}

// gormRecords stores per-doctor tokens in Postgres.
type gormRecords struct {
	db *gorm.DB
}

func (r *gormRecords) Get(ctx context.Context, doctorID uint) (*models.OAuthToken, error) {
	var rec models.OAuthToken
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormRecords) Save(ctx context.Context, doctorID uint, token *oauth2.Token) error {
	rec := models.OAuthToken{
		DoctorID:     doctorID,
		Provider:     "google",
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		Authorized:   true,
	}
	return r.db.WithContext(ctx).
		Where(models.OAuthToken{DoctorID: doctorID}).
		Assign(map[string]interface{}{
			"provider":      rec.Provider,
			"access_token":  rec.AccessToken,
			"refresh_token": rec.RefreshToken,
			"token_type":    rec.TokenType,
			"expiry":        rec.Expiry,
			"authorized":    true,
		}).
		FirstOrCreate(&rec).Error
}

func (r *gormRecords) Clear(ctx context.Context, doctorID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OAuthToken{}).
		Where("doctor_id = ?", doctorID).
		Updates(map[string]interface{}{
			"access_token":  "",
			"refresh_token": "",
			"authorized":    false,
		}).Error
}
