package quickbooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const ServiceQuickBooks = "quickbooks"

// intuitEndpoint is the QuickBooks Online OAuth2 endpoint pair.
var intuitEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appcenter.intuit.com/connect/oauth2",
	TokenURL: "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer",
}

// OAuthManager owns the authorization-code flow and the persisted token
// record. All QuickBooks API calls obtain their bearer token through it.
type OAuthManager struct {
	conf   *oauth2.Config
	tokens TokenRepository
	log    *zap.Logger
}

func NewOAuthManager(cfg *config.Config, tokens TokenRepository, log *zap.Logger) *OAuthManager {
	return &OAuthManager{
		conf: &oauth2.Config{
			ClientID:     cfg.QBOClientID,
			ClientSecret: cfg.QBOClientSecret,
			RedirectURL:  cfg.QBORedirectURL,
			Scopes:       []string{"com.intuit.quickbooks.accounting"},
			Endpoint:     intuitEndpoint,
		},
		tokens: tokens,
		log:    log,
	}
}

// AuthURL returns the consent URL plus the state value the callback must
// echo back.
func (m *OAuthManager) AuthURL() (url, state string) {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state = hex.EncodeToString(b)
	return m.conf.AuthCodeURL(state, oauth2.AccessTypeOffline), state
}

// Exchange trades the authorization code for tokens and persists them with
// the realm id the provider sent alongside the code.
func (m *OAuthManager) Exchange(ctx context.Context, code, realmID string) error {
	tok, err := m.conf.Exchange(ctx, code)
	if err != nil {
		return apperr.ExternalService("oauth code exchange failed", err)
	}

	rec := &OAuthTokenRecord{
		Service:      ServiceQuickBooks,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		RealmID:      realmID,
		ExpiresAt:    tok.Expiry,
		// Intuit refresh tokens live 100 days.
		RefreshTokenExpiresAt: time.Now().Add(100 * 24 * time.Hour),
	}
	if err := m.tokens.Upsert(ctx, rec); err != nil {
		return err
	}

	m.log.Info("quickbooks connected", zap.String("realm_id", realmID))
	return nil
}

// AccessToken returns a live access token and the realm id, refreshing and
// re-persisting when the stored token has expired.
func (m *OAuthManager) AccessToken(ctx context.Context) (token, realmID string, err error) {
	rec, err := m.tokens.Get(ctx, ServiceQuickBooks)
	if err != nil {
		return "", "", err
	}

	if time.Until(rec.ExpiresAt) > time.Minute {
		return rec.AccessToken, rec.RealmID, nil
	}

	refreshed, err := m.conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Expiry:       rec.ExpiresAt,
	}).Token()
	if err != nil {
		return "", "", apperr.ExternalService("oauth token refresh failed", err)
	}

	rec.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		rec.RefreshToken = refreshed.RefreshToken
		rec.RefreshTokenExpiresAt = time.Now().Add(100 * 24 * time.Hour)
	}
	rec.ExpiresAt = refreshed.Expiry
	if err := m.tokens.Upsert(ctx, rec); err != nil {
		// Token is usable even if the persist raced or failed.
		m.log.Warn("token upsert after refresh failed", zap.Error(err))
	}

	return rec.AccessToken, rec.RealmID, nil
}

// Refresh forces a refresh regardless of expiry. The cron scheduler calls
// this to keep the refresh token from going stale.
func (m *OAuthManager) Refresh(ctx context.Context) error {
	rec, err := m.tokens.Get(ctx, ServiceQuickBooks)
	if err != nil {
		return err
	}

	refreshed, err := m.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: rec.RefreshToken,
		// Zero expiry forces the source to refresh.
	}).Token()
	if err != nil {
		return apperr.ExternalService("oauth token refresh failed", err)
	}

	rec.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		rec.RefreshToken = refreshed.RefreshToken
		rec.RefreshTokenExpiresAt = time.Now().Add(100 * 24 * time.Hour)
	}
	rec.ExpiresAt = refreshed.Expiry
	return m.tokens.Upsert(ctx, rec)
}
