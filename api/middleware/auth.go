package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/riderschoice/riderschoice-backend/api/responses"
	pkgAuth "github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/auth/session"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// Auth resolves the bearer token to an AuthenticatedContext. The token's jti
// must still have a live session when sessions is non-nil.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, jti, err := authenticate(r.Context(), cfg, sessions, bearerToken(r.Header.Get("Authorization")))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithAuth(r.Context(), actor, jti)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, actor.AccountID.String()), string(actor.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, sessions session.AccessSessionChecker, token string) (pkgAuth.AuthenticatedContext, string, error) {
	var none pkgAuth.AuthenticatedContext
	if token == "" {
		return none, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return none, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	jti := claims.JTI()
	if jti == "" {
		return none, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	if sessions != nil {
		live, err := sessions.HasSession(ctx, jti)
		if err != nil {
			return none, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable")
		}
		if !live {
			return none, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
		}
	}
	return pkgAuth.NewAuthenticatedContext(claims), jti, nil
}

// bearerToken accepts "Bearer <token>" in any case, or a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}

// RequireRole admits callers holding one of roles. Mount it after Auth.
func RequireRole(logg *logger.Logger, roles ...enums.AccountRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := AuthFromContext(r.Context())
			if err := actor.Require(); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !slices.Contains(roles, actor.Role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
