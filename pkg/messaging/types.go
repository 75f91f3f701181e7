package messaging

import "time"

type ChangeTopic string

const (
	CatalogChanged ChangeTopic = "catalog_changed"
	TrackingEvents ChangeTopic = "tracking"
)

// CatalogChange is published when the listing markup behind the catalog has
// been republished.
type CatalogChange struct {
	Source string    `json:"source,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Time   time.Time `json:"time"`
}
