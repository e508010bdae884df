package middleware

import (
	"errors"
	"net/http"
	"strings"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth validates the bearer JWT and the session it was issued for, then
// stores the user ID, the session token and the user's current roles in the
// request context. Roles are read from the identity provider; the roles claim
// of the token only reflects the state at login.
func Auth(secret string, sessionRepo repository.SessionRepository, identity policy.IdentityProvider, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			raw, ok := BearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				logger.Warn("Rejected access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}
			sessionToken := uuid.MustParse(claims.ID)
			userID := uuid.MustParse(claims.Subject)

			// Logout revokes the session, which invalidates the JWT as well
			session, err := sessionRepo.FindValidSession(r.Context(), sessionToken)
			if err != nil {
				logger.Error("Failed to validate session",
					zap.String("session", sessionToken.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if session == nil || session.UserID != userID {
				logger.Warn("Invalid or expired session", zap.String("session", sessionToken.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			roles, err := identity.ActorRoles(r.Context(), userID)
			if errors.Is(err, utils.ErrNotFound) {
				logger.Warn("Token of a removed or inactive user", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}
			if err != nil {
				logger.Error("Failed to resolve user roles", zap.String("user_id", userID.String()), zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, entity.RoleNames(roles))
			ctx = utils.SetTokenContext(ctx, sessionToken.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireRole lets the request through when the current user holds one of
// the roles. Roles are read from the user store, not from the token, so a
// role change takes effect immediately.
func RequireRole(identity policy.IdentityProvider, logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Get user ID from context (set by Auth)
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 2. Resolve current roles
			actual, err := identity.ActorRoles(r.Context(), userID)
			if err != nil {
				logger.Warn("Role check: failed to resolve user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 3. Check role
			actor := policy.NewActor(userID, actual...)
			for _, role := range roles {
				if actor.HasRole(role) {
					ctx := utils.SetUserContext(r.Context(), userID, entity.RoleNames(actual))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			logger.Warn("Role check: access denied",
				zap.String("user_id", userID.String()),
				zap.String("path", r.URL.Path),
				zap.Strings("required", entity.RoleNames(roles)),
			)
			utils.ResponseForbidden(w, "Insufficient role")
		})
	}
}
