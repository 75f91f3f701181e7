package types

import (
	"net/http"
)

type Tracking interface {
	TrackSession(sessionId string, r *http.Request)
	TrackFilter(sessionId string, binding string, selection Selection, resultLen int, r *http.Request)
	TrackNavigation(sessionId string, location string)
	Close() error
}
