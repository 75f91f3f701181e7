package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/matst80/tyre-finder/pkg/common"
	log "github.com/sirupsen/logrus"
)

const AdminCookieName = "tf-admin"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAdminDisabled = errors.New("admin credentials are not configured")
)

// AdminAuth guards the admin routes. A request passes with the api key as a
// bearer token, or with a token signed by Secret in the bearer header or the
// admin cookie.
type AdminAuth struct {
	ApiKey string
	Secret []byte
}

func (a *AdminAuth) Enabled() bool {
	return a != nil && (a.ApiKey != "" || len(a.Secret) > 0)
}

// NewToken signs an admin token for subject valid for ttl.
func (a *AdminAuth) NewToken(subject string, ttl time.Duration) (string, error) {
	if a == nil || len(a.Secret) == 0 {
		return "", ErrAdminDisabled
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub":  subject,
			"role": "admin",
			"exp":  time.Now().Add(ttl).Unix(),
		})
	return token.SignedString(a.Secret)
}

func (a *AdminAuth) validToken(raw string) bool {
	if len(a.Secret) == 0 || raw == "" {
		return false
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return ok && claims["role"] == "admin"
}

func (a *AdminAuth) authorized(r *http.Request) bool {
	bearer, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if a.ApiKey != "" && subtle.ConstantTimeCompare([]byte(bearer), []byte(a.ApiKey)) == 1 {
		return true
	}
	if a.validToken(bearer) {
		return true
	}
	if cookie, err := r.Cookie(AdminCookieName); err == nil {
		return a.validToken(cookie.Value)
	}
	return false
}

func (a *AdminAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			common.ErrorResponse(w, http.StatusForbidden, ErrAdminDisabled)
			return
		}
		if !a.authorized(r) {
			log.Warnf("Rejected admin request from %s", r.RemoteAddr)
			common.ErrorResponse(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		next(w, r)
	}
}
