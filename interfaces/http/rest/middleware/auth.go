package middleware

import (
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/errors"
)

// UserHeader carries the caller's user id when token authentication is
// disabled. It is trusted as is, so it must only be used behind a gateway
// that sets it or in development.
const UserHeader = "X-User-ID"

// Authenticator resolves the calling user for API routes
type Authenticator struct {
	validator *auth.JWTValidator
	enabled   bool
	errs      *errors.ErrorHandler
	logger    *zap.Logger
}

// NewAuthenticator creates an authenticator. With enabled false the caller
// is taken from the X-User-ID header and no token is checked.
func NewAuthenticator(validator *auth.JWTValidator, enabled bool, errs *errors.ErrorHandler, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errs == nil {
		errs = errors.NewErrorHandler(logger, false)
	}
	return &Authenticator{
		validator: validator,
		enabled:   enabled && validator != nil,
		errs:      errs,
		logger:    logger,
	}
}

// Enabled reports whether bearer tokens are checked
func (a *Authenticator) Enabled() bool { return a.enabled }

// Identify attaches the caller to the request context when credentials are
// present. Invalid credentials are rejected; requests without any pass
// through anonymously.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, found, err := a.resolve(r)
		if err != nil {
			a.errs.Handle(w, r, err)
			return
		}
		if found {
			r = r.WithContext(auth.WithUser(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) resolve(r *http.Request) (valueobjects.UserID, bool, error) {
	if !a.enabled {
		raw := strings.TrimSpace(r.Header.Get(UserHeader))
		if raw == "" {
			return 0, false, nil
		}
		id, err := valueobjects.ParseUserID(raw)
		if err != nil {
			return 0, false, errors.NewUnauthorizedError(UserHeader + " must be a positive user id")
		}
		return id, true, nil
	}

	token := extractToken(r)
	if token == "" {
		return 0, false, nil
	}
	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		a.logger.Debug("Rejected token",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		return 0, false, errors.NewUnauthorizedError(tokenMessage(err)).WithCause(err)
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, false, errors.NewUnauthorizedError("invalid token claims").WithCause(err)
	}
	return id, true, nil
}

func tokenMessage(err error) string {
	switch {
	case stderrors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case stderrors.Is(err, auth.ErrInvalidClaims):
		return "invalid token claims"
	default:
		return "invalid token"
	}
}

// Require rejects requests that Identify did not attach a caller to
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			a.errs.Handle(w, r, errors.NewUnauthorizedError("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(authHeader)
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RateLimit limits requests per client. Authenticated callers are keyed by
// user id, everyone else by IP. Place it after Identify.
func RateLimit(limiter *auth.ClientRateLimiter, errs *errors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errs == nil {
		errs = errors.NewErrorHandler(logger, false)
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil || limiter.Limit() <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var allowed bool
			var err error
			if userID, ok := auth.UserFromContext(r.Context()); ok {
				allowed, err = limiter.AllowUser(r.Context(), userID.String())
			} else {
				allowed, err = limiter.AllowIP(r.Context(), getClientIP(r))
			}
			if err != nil {
				// Fail open
				logger.Error("Rate limiter failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				errs.Handle(w, r, errors.NewRateLimitError(limiter.Limit(), windowName(limiter.Window())))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func windowName(d time.Duration) string {
	if d == time.Minute {
		return "minute"
	}
	return d.String()
}

// getClientIP returns the client address. RealIP has already folded the
// forwarding headers into RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
