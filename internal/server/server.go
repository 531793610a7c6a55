package server

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/domain"
	"github.com/technopolitica/loadouts/internal/metrics"
)

type userMetadata struct {
	PendingHandle      string `json:"pending_handle"`
	PendingDisplayName string `json:"pending_display_name"`
}

type authClaims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

func (claims authClaims) authInfo() domain.AuthInfo {
	return domain.AuthInfo{
		UserID:             claims.Subject,
		Email:              claims.Email,
		PendingHandle:      claims.UserMetadata.PendingHandle,
		PendingDisplayName: claims.UserMetadata.PendingDisplayName,
	}
}

type contextKey int

const (
	contextKeyAuth contextKey = iota
	contextKeyRepository
	contextKeyLogger
	contextKeyProfile
)

// LookupAuthInfo returns the caller's identity when the request carried a
// valid bearer token.
func LookupAuthInfo(r *http.Request) (auth domain.AuthInfo, ok bool) {
	auth, ok = r.Context().Value(contextKeyAuth).(domain.AuthInfo)
	return
}

func GetAuthInfo(r *http.Request) domain.AuthInfo {
	auth, ok := LookupAuthInfo(r)
	if !ok {
		panic("missing required AuthInfo")
	}
	return auth
}

// viewerID is empty for anonymous callers.
func viewerID(r *http.Request) string {
	auth, _ := LookupAuthInfo(r)
	return auth.UserID
}

// GetProfile returns the caller's completed profile on routes guarded by
// requireCompleteUser.
func GetProfile(r *http.Request) domain.Profile {
	profile, ok := r.Context().Value(contextKeyProfile).(domain.Profile)
	if !ok {
		panic("missing required Profile")
	}
	return profile
}

func GetRepository(r *http.Request) (repo db.Repository) {
	repo, ok := r.Context().Value(contextKeyRepository).(db.Repository)
	if !ok {
		panic("missing required repository")
	}
	return
}

func getLogger(r *http.Request) logrus.FieldLogger {
	logger, ok := r.Context().Value(contextKeyLogger).(logrus.FieldLogger)
	if !ok {
		panic("missing required logger")
	}
	return logger
}

func parseBearerToken(r *http.Request) (bearerToken string, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		err = fmt.Errorf("missing required Authorization header")
		return
	}
	bearerToken, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		err = fmt.Errorf("unsupported or malformed Authorization header (only Bearer scheme is supported)")
		return
	}
	bearerToken = strings.TrimSpace(bearerToken)
	if bearerToken == "" {
		err = fmt.Errorf("malformed Authorization header missing bearer token")
	}
	return
}

func checkAuthentication(bearerToken string, publicKey *rsa.PublicKey) (authInfo domain.AuthInfo, err error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}))
	var claims authClaims
	authToken, err := parser.ParseWithClaims(bearerToken, &claims, func(t *jwt.Token) (interface{}, error) {
		return publicKey, nil
	})
	if err != nil {
		err = fmt.Errorf("invalid auth token: %w", err)
		return
	}
	if !authToken.Valid {
		err = fmt.Errorf("invalid auth token")
		return
	}
	if claims.Subject == "" {
		err = fmt.Errorf("invalid auth token: missing subject")
		return
	}
	authInfo = claims.authInfo()
	return
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer, charset="UTF-8"`)
	respondError(w, r, http.StatusUnauthorized, domain.ApiErrorUnauthorized, "Authentication required.")
}

// authentication resolves the caller when a bearer token is present. Requests
// without one continue anonymously; requests with a bad one are rejected.
func authentication(publicKey *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			bearerToken, err := parseBearerToken(r)
			if err == nil {
				var authInfo domain.AuthInfo
				authInfo, err = checkAuthentication(bearerToken, publicKey)
				if err == nil {
					r = r.WithContext(context.WithValue(r.Context(), contextKeyAuth, authInfo))
					next.ServeHTTP(w, r)
					return
				}
			}
			getLogger(r).WithError(err).Info("rejected bearer token")
			unauthorized(w, r)
		})
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := LookupAuthInfo(r); !ok {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCompleteUser only lets through callers that finished onboarding,
// completing their profile from signup metadata first when possible.
func requireCompleteUser(next http.Handler) http.Handler {
	return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuthInfo(r)
		profile, err := GetRepository(r).EnsureProfileFromMetadata(r.Context(), auth)
		if err != nil {
			getLogger(r).WithError(err).WithField("user_id", auth.UserID).Error("failed to load profile")
			respondError(w, r, http.StatusInternalServerError, domain.ApiErrorFetchFailed, "Unable to load profile.")
			return
		}
		if !domain.IsProfileComplete(profile) {
			profileIncomplete(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyProfile, *profile)))
	}))
}

func profileIncomplete(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if next == "" {
		next = r.URL.RequestURI()
	}
	respondAPIError(w, r, http.StatusForbidden, domain.ApiError{
		Code:       domain.ApiErrorProfileIncomplete,
		Message:    "Complete your profile to continue.",
		RedirectTo: domain.OnboardingPath(next),
	})
}

func inject(repo db.Repository, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextKeyRepository, repo)
			requestLogger := logger.WithField("request_id", middleware.GetReqID(ctx))
			ctx = context.WithValue(ctx, contextKeyLogger, logrus.FieldLogger(requestLogger))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

const DefaultRequestTimeout = 15 * time.Second

// FIXME: probably MUCH better to use JWKS here so we don't have to restart the server to change keys.
func New(repo db.Repository, publicKey rsa.PublicKey, logger *logrus.Logger, timeout time.Duration) *chi.Mux {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/health"))
	router.Use(metrics.Middleware)
	router.Use(middleware.Timeout(timeout))
	router.Use(middleware.AllowContentType("application/json"))
	router.Use(inject(repo, logger))
	router.Use(authentication(&publicKey))

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Mount("/feed", NewFeedRouter())
	router.Mount("/notifications", NewNotificationsRouter())
	router.Mount("/profiles", NewProfilesRouter())
	router.Mount("/profile", NewOwnProfileRouter())
	router.Mount("/follows", NewFollowsRouter())
	router.Mount("/auth", NewAuthRouter())
	router.Mount("/collections", NewCollectionsRouter())
	router.Mount("/products", NewProductsRouter())
	router.Mount("/likes", NewLikesRouter())
	router.Mount("/comments", NewCommentsRouter())
	router.Mount("/search", NewSearchRouter())
	router.Mount("/categories", NewCategoriesRouter())

	return router
}
