package natsx

import (
	"encoding/json"
	"strings"
	"time"

	"EduTalk/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the fan-out payload published after a committed write.
// Clients still poll the HTTP API; these events carry no delivery
// guarantee and failures are dropped.
type Event struct {
	Kind      string `json:"kind"` // message / presence
	UserID    string `json:"user_id"`
	ChatID    string `json:"chat_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	IsOnline  bool   `json:"is_online,omitempty"`
	At        int64  `json:"at"` // unix ms
}

// Notifier publishes events toward a user. A nil *Notifier is valid
// and publishes nothing, so the service can run without a broker.
type Notifier struct {
	nc *nats.Conn
}

type Config struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// Connect dials NATS. Reconnects forever in the background; publishes
// during an outage fail and are logged by the callers' best-effort
// paths.
func Connect(cfg Config) (*Notifier, error) {
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	return &Notifier{nc: nc}, nil
}

func (n *Notifier) Close() {
	if n != nil && n.nc != nil {
		n.nc.Close()
	}
}

// NotifyMessage tells userID a message landed in chatID.
func (n *Notifier) NotifyMessage(userID, chatID, messageID string) {
	n.publish("edutalk.chat.msg."+userID, Event{
		Kind: "message", UserID: userID, ChatID: chatID, MessageID: messageID,
		At: time.Now().UnixMilli(),
	})
}

// NotifyPresence fans out a presence flip for userID.
func (n *Notifier) NotifyPresence(userID string, online bool) {
	n.publish("edutalk.chat.presence."+userID, Event{
		Kind: "presence", UserID: userID, IsOnline: online,
		At: time.Now().UnixMilli(),
	})
}

func (n *Notifier) publish(subject string, ev Event) {
	if n == nil || n.nc == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := n.nc.Publish(subject, data); err != nil {
		logger.Warn("nats publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
