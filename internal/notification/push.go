package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/m-mizutani/goerr/v2"

	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/model"
)

// PushClient sends a single web push notification.
type PushClient interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushClient is the PushClient backed by the webpush library.
type webPushClient struct{}

func (webPushClient) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the persistence PushSender needs.
type SubscriptionStore interface {
	ListPushSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// PushSender notifies every browser the responsible registered for web push.
type PushSender struct {
	subs    SubscriptionStore
	options *webpush.Options
	client  PushClient
}

// NewPushSender creates a sender signing requests with options' VAPID keys.
func NewPushSender(subs SubscriptionStore, options *webpush.Options) *PushSender {
	return &PushSender{
		subs:    subs,
		options: options,
		client:  webPushClient{},
	}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

func (s *PushSender) SendAssignment(ctx context.Context, msg AssignmentMessage) error {
	subs, err := s.subs.ListPushSubscriptions(ctx, msg.UserID)
	if err != nil {
		return goerr.Wrap(err, "failed to list push subscriptions", goerr.V("record_id", msg.RecordID))
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(pushPayload{
		Title: "Maintenance assigned: " + msg.MachineName,
		Body:  msg.Priority + " · " + msg.ProblemDescription,
		URL:   msg.ActionURL,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode push payload")
	}

	var errs []error
	for _, sub := range subs {
		if err := s.send(ctx, sub, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *PushSender) send(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := s.client.Send(payload, wpSub, s.options)
	if err != nil {
		return goerr.Wrap(err, "failed to send push notification", goerr.V("endpoint", sub.Endpoint))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		logging.From(ctx).Info("push subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := s.subs.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			return goerr.Wrap(err, "failed to delete expired subscription", goerr.V("endpoint", sub.Endpoint))
		}
		return nil
	case resp.StatusCode >= http.StatusBadRequest:
		return goerr.New("push service rejected notification",
			goerr.V("endpoint", sub.Endpoint), goerr.V("status", resp.StatusCode))
	}
	return nil
}
