// Web push dispatch for submission notifications.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

// Notifier broadcasts submission events to every registered push
// subscription. It never blocks or returns errors; delivery failures are
// logged and ignored.
type Notifier struct {
	push *storage.PushSubscriptionService
	cfg  storage.WebPushConfig
}

// NewNotifier creates a notifier. Dispatch is a no-op until VAPID keys are
// configured.
func NewNotifier(push *storage.PushSubscriptionService, cfg storage.WebPushConfig) *Notifier {
	return &Notifier{push: push, cfg: cfg}
}

// FormSubmitted notifies all admins that a form received a submission.
func (n *Notifier) FormSubmitted(formName, slug, pageID string) {
	if n.push == nil || n.cfg.VAPIDPublicKey == "" || n.cfg.VAPIDPrivateKey == "" {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"title":   "New submission",
		"body":    fmt.Sprintf("%s received a new submission", formName),
		"slug":    slug,
		"page_id": pageID,
	})
	go n.broadcast(payload)
}

func (n *Notifier) broadcast(payload []byte) {
	for sub := range n.push.All() {
		resp, err := webpush.SendNotification(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, &webpush.Options{
			Subscriber:      n.cfg.Contact,
			VAPIDPublicKey:  n.cfg.VAPIDPublicKey,
			VAPIDPrivateKey: n.cfg.VAPIDPrivateKey,
			TTL:             86400,
		})
		if err != nil {
			slog.Error("Web push send failed", "err", err, "endpoint", sub.Endpoint)
			continue
		}
		_ = resp.Body.Close()
		// 410 Gone means the subscription is invalid; drop it.
		if resp.StatusCode == http.StatusGone {
			if err := n.push.Delete(sub.ID); err != nil {
				slog.Error("Failed to delete expired push subscription", "err", err, "sub_id", sub.ID)
			}
		}
	}
}
