package tracking

import (
	"net/http"
	"time"

	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/messaging"
	"github.com/matst80/tyre-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const (
	EventSession    uint16 = 0
	EventFilter     uint16 = 1
	EventNavigation uint16 = 2
)

// RabbitTracking publishes visitor events to the tracking topic. Events are
// queued and sent in batches so handlers never wait on the broker.
type RabbitTracking struct {
	prefix     string
	connection *amqp.Connection
	queue      *common.QueueHandler[any]
}

func NewRabbitTracking(url, prefix string) (*RabbitTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, prefix, messaging.TrackingEvents); err != nil {
		conn.Close()
		return nil, err
	}
	rt := &RabbitTracking{
		prefix:     prefix,
		connection: conn,
	}
	rt.queue = common.NewQueueHandler(rt.sendBatch, 50, time.Second)
	return rt, nil
}

func (rt *RabbitTracking) sendBatch(events []any) {
	for _, e := range events {
		if err := messaging.SendChange(rt.connection, rt.prefix, messaging.TrackingEvents, e); err != nil {
			log.Warnf("Error sending tracking event: %v", err)
		}
	}
}

func (rt *RabbitTracking) Close() error {
	rt.queue.Close()
	return rt.connection.Close()
}

type BaseEvent struct {
	SessionId string    `json:"session_id"`
	Event     uint16    `json:"event"`
	Time      time.Time `json:"time"`
}

func newBaseEvent(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{SessionId: sessionId, Event: event, Time: time.Now()}
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

type FilterEvent struct {
	*BaseEvent
	Binding         string          `json:"binding"`
	Selection       types.Selection `json:"selection"`
	NumberOfResults int             `json:"noi"`
	Referer         string          `json:"referer,omitempty"`
}

type NavigationEvent struct {
	*BaseEvent
	Location string `json:"location"`
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func NewSessionEvent(sessionId string, r *http.Request) Session {
	return Session{
		BaseEvent:    newBaseEvent(sessionId, EventSession),
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	}
}

func (rt *RabbitTracking) TrackSession(sessionId string, r *http.Request) {
	rt.queue.Add(NewSessionEvent(sessionId, r))
}

func (rt *RabbitTracking) TrackFilter(sessionId string, binding string, selection types.Selection, resultLen int, r *http.Request) {
	rt.queue.Add(&FilterEvent{
		BaseEvent:       newBaseEvent(sessionId, EventFilter),
		Binding:         binding,
		Selection:       selection.Clone(),
		NumberOfResults: resultLen,
		Referer:         r.Header.Get("Referer"),
	})
}

func (rt *RabbitTracking) TrackNavigation(sessionId string, location string) {
	rt.queue.Add(&NavigationEvent{
		BaseEvent: newBaseEvent(sessionId, EventNavigation),
		Location:  location,
	})
}
