package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	identityservice "github.com/entoun8/alshami-store/pkg/identity/domain/service"
)

const sessionCartCookie = "sessionCartId"

type contextKey int

const (
	sessionCartIDKey contextKey = iota
	profileKey
)

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

// sessionMiddleware guarantees every browser caller carries the
// anonymous cart cookie, minting it on first contact. Provider
// callbacks are not cart sessions and get no cookie.
func sessionMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/webhooks/") {
			h.ServeHTTP(w, r)
			return
		}

		sessionCartID := ""
		if cookie, err := r.Cookie(sessionCartCookie); err == nil && cookie.Value != "" {
			sessionCartID = cookie.Value
		} else {
			sessionCartID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCartCookie,
				Value:    sessionCartID,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionCartIDKey, sessionCartID)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware resolves an optional bearer token into the caller's
// profile. A present but invalid token is rejected; absence is fine.
func authMiddleware(identity identityservice.IdentityService) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				h.ServeHTTP(w, r)
				return
			}

			profile, err := identity.Resolve(token)
			if err != nil {
				writeError(w, identitymodel.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if profileFrom(r) == nil {
			writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
			return
		}
		h(w, r)
	}
}

func requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !profileFrom(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "Admin access required"})
			return
		}
		h(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func sessionCartIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(sessionCartIDKey).(string); ok {
		return id
	}
	return ""
}

func profileFrom(r *http.Request) *identitymodel.UserProfile {
	if profile, ok := r.Context().Value(profileKey).(*identitymodel.UserProfile); ok {
		return profile
	}
	return nil
}
