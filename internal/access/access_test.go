package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var (
	organiser = &model.Account{ID: "acc-org", Username: "olga", Role: model.RoleOrganiser}
	member    = &model.Account{ID: "acc-mem", Username: "ann", Role: model.RoleMember}
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		wantCode string
	}{
		{"anonymous", nil, apperrors.CodeUnauthorized},
		{"empty identity", &Identity{}, apperrors.CodeUnauthorized},
		{"member", IdentityOf(member), apperrors.CodeForbidden},
		{"organiser", IdentityOf(organiser), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOrganiser(tt.identity)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	assert.True(t, apperrors.HasCode(RequireAuthenticated(nil), apperrors.CodeUnauthorized))
	assert.NoError(t, RequireAuthenticated(IdentityOf(member)))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	ctx := WithIdentity(context.Background(), IdentityOf(organiser))
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "acc-org", got.AccountID)
	assert.Equal(t, model.RoleOrganiser, got.Role)
}

func TestSessionManager_IssueAndVerify(t *testing.T) {
	m := NewSessionManager(testSecret, "dancebook", time.Hour, nil)
	ctx := context.Background()

	session, err := m.Issue(member)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Same(t, member, session.Account)

	claims, err := m.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-mem", claims.Subject)
	assert.Equal(t, model.RoleMember, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionManager_Rejects(t *testing.T) {
	m := NewSessionManager(testSecret, "dancebook", time.Hour, nil)
	ctx := context.Background()

	session, err := m.Issue(member)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewSessionManager("another-secret-another-secret-xx", "dancebook", time.Hour, nil)
		_, err := other.Verify(ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewSessionManager(testSecret, "someone-else", time.Hour, nil)
		_, err := other.Verify(ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewSessionManager(testSecret, "dancebook", time.Hour, nil)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(ctx, session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID,
			Issuer:    "dancebook",
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        "jti",
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(ctx, unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessionManager_Revoke(t *testing.T) {
	m := NewSessionManager(testSecret, "dancebook", time.Hour, NewMemoryRevoker())
	ctx := context.Background()

	session, err := m.Issue(member)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, session.Token))

	_, err = m.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	assert.NoError(t, m.Revoke(ctx, "garbage"), "unusable tokens are ignored")
}

func TestMemoryRevoker_Expires(t *testing.T) {
	r := NewMemoryRevoker()
	now := time.Date(2024, 12, 25, 19, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti", time.Minute))
	revoked, err := r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisRevoker(client, "test")
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti", time.Minute))
	revoked, err = r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

type accountFinderFunc func(ctx context.Context, id string) (*model.Account, error)

func (f accountFinderFunc) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return f(ctx, id)
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := NewSessionManager(testSecret, "dancebook", time.Hour, nil)
	accounts := accountFinderFunc(func(ctx context.Context, id string) (*model.Account, error) {
		if id == organiser.ID {
			return organiser, nil
		}
		return nil, errors.New("not found")
	})

	var seen *Identity
	handler := Authenticate(m, accounts, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	orgSession, err := m.Issue(organiser)
	require.NoError(t, err)
	ghostSession, err := m.Issue(&model.Account{ID: "deleted", Username: "ghost", Role: model.RoleOrganiser})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		wantID string
	}{
		{"no header", "", ""},
		{"valid token", "Bearer " + orgSession.Token, organiser.ID},
		{"deleted account", "Bearer " + ghostSession.Token, ""},
		{"bad token", "Bearer nope", ""},
		{"basic auth", "Basic abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantID == "" {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.wantID, seen.AccountID)
		})
	}
}
