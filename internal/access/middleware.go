package access

import (
	"context"
	"net/http"

	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"
)

type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// Authenticate attaches an Identity to requests that carry a valid bearer
// token for an account that still exists. Every other request continues
// anonymously; the policy checks reject it where a caller is required.
func Authenticate(sessions *SessionManager, accounts AccountFinder, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httputil.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			reqLog := log.FromContext(ctx)

			claims, err := sessions.Verify(ctx, token)
			if err != nil {
				reqLog.Debug("ignoring unusable session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			account, err := accounts.FindByID(ctx, claims.Subject)
			if err != nil {
				reqLog.Info("session refers to a missing account",
					"account_id", claims.Subject,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, IdentityOf(account))))
		})
	}
}
