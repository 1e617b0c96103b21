package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dancebook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionAudience = "dancebook-api"
	sessionLeeway   = 30 * time.Second
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevokedToken = errors.New("session token revoked")
)

// Claims name the account a token was issued to. The middleware loads the
// account itself, so a deleted account or changed role takes effect at once.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewSessionManager(secret, issuer string, ttl time.Duration, revoker Revoker) *SessionManager {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &SessionManager{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

func (m *SessionManager) Issue(account *model.Account) (*model.Session, error) {
	if account == nil || account.ID == "" {
		return nil, errors.New("cannot issue a session without an account id")
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &model.Session{
		Token:     signed,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}

// Verify checks signature, issuer, audience, expiry and revocation.
func (m *SessionManager) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke invalidates token for the rest of its lifetime. Tokens that no
// longer verify are already unusable and are ignored.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(m.now()))
}

func (m *SessionManager) parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(sessionLeeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing jti or subject", ErrInvalidToken)
	}
	return claims, nil
}
