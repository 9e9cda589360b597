package infra

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is one structured telemetry record for an outbound call or harvest
// step. The schema is stable; sinks must not reinterpret fields.
type Event struct {
	Name       string         `json:"event"`
	Provider   string         `json:"provider,omitempty"`
	ChainID    uint64         `json:"chain_id,omitempty"`
	Method     string         `json:"method,omitempty"`
	Outcome    string         `json:"outcome,omitempty"` // ok, error, cache_hit, ...
	DurationMS int64          `json:"duration_ms,omitempty"`
	Status     int            `json:"status,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

type Telemetry interface {
	Emit(event Event)
	Close()
}

// NopTelemetry discards all events.
type NopTelemetry struct{}

func (NopTelemetry) Emit(Event) {}
func (NopTelemetry) Close()     {}

// SlogTelemetry logs events at debug level.
type SlogTelemetry struct {
	Logger *slog.Logger
}

func (s SlogTelemetry) Emit(ev Event) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Debug(ev.Name,
		"provider", ev.Provider,
		"chain_id", ev.ChainID,
		"method", ev.Method,
		"outcome", ev.Outcome,
		"duration_ms", ev.DurationMS,
		"status", ev.Status,
	)
}

func (s SlogTelemetry) Close() {}

// NATSTelemetry publishes events as JSON to a subject under a prefix, so a
// fleet of clients can feed one monitoring stream.
type NATSTelemetry struct {
	conn    *nats.Conn
	subject string
}

func NewNATSTelemetry(url string, subjectPrefix string) (*NATSTelemetry, error) {
	conn, err := nats.Connect(url, nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, err
	}
	return &NATSTelemetry{conn: conn, subject: subjectPrefix + ".events"}, nil
}

func (n *NATSTelemetry) Emit(ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UTC().Unix()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = n.conn.Publish(n.subject, data)
}

func (n *NATSTelemetry) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
