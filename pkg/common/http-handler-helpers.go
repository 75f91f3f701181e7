package common

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/matst80/tyre-finder/pkg/types"
	log "github.com/sirupsen/logrus"
)

// Encoder is the json encoder handed to handlers.
type Encoder interface {
	Encode(v any) error
}

type JsonHandlerFunc func(w http.ResponseWriter, r *http.Request, sessionId string, enc Encoder) error

// JsonHandler answers CORS preflights, resolves the session cookie and calls
// fn with a json encoder writing to w. Errors returned by fn are logged.
func JsonHandler(trk types.Tracking, fn JsonHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(trk, w, r)
		w.Header().Set("Content-Type", "application/json")
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		err := fn(w, r, sessionId, sonic.ConfigDefault.NewEncoder(w))
		if err != nil {
			log.Errorf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}

// ErrorResponse writes a json error body with status.
func ErrorResponse(w http.ResponseWriter, status int, err error) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return sonic.ConfigDefault.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
