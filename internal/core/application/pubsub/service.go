package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

const (
	EventAlertError   = "ALERT_ERROR"
	EventAlertSuccess = "ALERT_SUCCESS"
	EventAlertClear   = "ALERT_CLEAR"
	EventTradeSummary = "TRADE_SUMMARY"
	EventBuyView      = "BUY_VIEW"
	EventNavigate     = "NAVIGATE_BUY_SELL"

	defaultEventLogSize = 100
)

var events = map[string]struct{}{
	EventAlertError:   {},
	EventAlertSuccess: {},
	EventAlertClear:   {},
	EventTradeSummary: {},
	EventBuyView:      {},
	EventNavigate:     {},
	ports.AnyTopic:    {},
}

// IsValidEvent returns whether event is a known topic or the wildcard.
func IsValidEvent(event string) bool {
	_, ok := events[event]
	return ok
}

// Event is a UI event as recorded in the event log and sent to webhooks.
type Event struct {
	Seq       uint64                 `json:"seq"`
	Event     string                 `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// WebhookInfo describes a registered webhook.
type WebhookInfo struct {
	ID       string `json:"id"`
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secured  bool   `json:"secured"`
}

// Service delivers UI events to webhook subscribers and keeps the latest ones
// in memory for polling clients. It implements ports.Notifier.
type Service struct {
	pubsub ports.SecurePubSub

	lock    sync.RWMutex
	seq     uint64
	log     []Event
	logSize int
}

func NewService(pubsub ports.SecurePubSub) *Service {
	return &Service{
		pubsub:  pubsub,
		log:     make([]Event, 0, defaultEventLogSize),
		logSize: defaultEventLogSize,
	}
}

func (s *Service) SecurePubSub() ports.SecurePubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if event == ports.UnspecifiedTopic || !IsValidEvent(event) {
		return "", fmt.Errorf("invalid webhook event type")
	}
	if s.pubsub == nil {
		return "", fmt.Errorf("webhooks are not enabled")
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return fmt.Errorf("webhooks are not enabled")
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if s.pubsub == nil {
		return nil, nil
	}
	subs := s.pubsub.ListSubscriptionsForTopic(event)
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			ID:       sub.Id(),
			Event:    sub.Topic(),
			Endpoint: sub.NotifyAt(),
			Secured:  sub.IsSecured(),
		})
	}
	return webhooks, nil
}

// Events returns the recorded events with sequence number greater than
// since, oldest first.
func (s *Service) Events(since uint64) []Event {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]Event, 0, len(s.log))
	for _, e := range s.log {
		if e.Seq > since {
			list = append(list, e)
		}
	}
	return list
}

func (s *Service) DisplayError(msg string) {
	s.publish(EventAlertError, map[string]interface{}{"message": msg})
}

func (s *Service) DisplaySuccess(msg string) {
	s.publish(EventAlertSuccess, map[string]interface{}{"message": msg})
}

func (s *Service) Clear() {
	s.publish(EventAlertClear, nil)
}

func (s *Service) OpenTradeSummary(trade domain.Trade, state string) {
	s.publish(EventTradeSummary, map[string]interface{}{
		"trade": getTradePayload(trade),
		"state": state,
	})
}

func (s *Service) OpenBuyView(trade *domain.Trade, opts ports.BuyViewOptions) {
	payload := map[string]interface{}{
		"options": opts,
	}
	if trade != nil {
		payload["trade"] = getTradePayload(*trade)
	}
	s.publish(EventBuyView, payload)
}

func (s *Service) GoToBuySell() {
	s.publish(EventNavigate, map[string]interface{}{"dismissModals": true})
}

func (s *Service) Close() {
	if s.pubsub != nil {
		//nolint
		s.pubsub.Close()
	}
}

// publish records the event and delivers it to webhooks in the background.
func (s *Service) publish(event string, payload map[string]interface{}) {
	s.lock.Lock()
	s.seq++
	e := Event{
		Seq:       s.seq,
		Event:     event,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
	s.log = append(s.log, e)
	if len(s.log) > s.logSize {
		s.log = s.log[len(s.log)-s.logSize:]
	}
	s.lock.Unlock()

	log.Debugf("event %s #%d", event, e.Seq)

	if s.pubsub == nil {
		return
	}
	message, _ := json.Marshal(e)
	go func() {
		if err := s.pubsub.Publish(event, string(message)); err != nil {
			log.WithError(err).Warnf("failed to deliver event %s", event)
		}
	}()
}
