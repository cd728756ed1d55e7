package handlers

import (
	"context"
	"errors"

	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

// PushHandler manages web push subscriptions for admin users.
type PushHandler struct {
	svc *Services
	cfg *Config
}

// NewPushHandler creates a new push subscription handler.
func NewPushHandler(svc *Services, cfg *Config) *PushHandler {
	return &PushHandler{svc: svc, cfg: cfg}
}

// Subscribe registers a browser push subscription. Re-registering the same
// endpoint returns the existing subscription.
func (h *PushHandler) Subscribe(ctx context.Context, user *identity.User, req *dto.SubscribePushRequest) (*dto.SubscribePushResponse, error) {
	sub, err := h.svc.Push.Create(user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return nil, dto.BadRequest(err.Error())
	}
	return &dto.SubscribePushResponse{ID: sub.ID}, nil
}

// Unsubscribe removes one of the caller's push subscriptions.
func (h *PushHandler) Unsubscribe(ctx context.Context, user *identity.User, req *dto.UnsubscribePushRequest) (*dto.UnsubscribePushResponse, error) {
	sub, err := h.svc.Push.Get(req.SubscriptionID)
	if err != nil {
		if errors.Is(err, storage.ErrPushSubscriptionNotFound) {
			return nil, dto.NotFound("Push subscription")
		}
		return nil, dto.InternalWithError("Failed to look up push subscription", err)
	}
	if sub.UserID != user.ID {
		return nil, dto.Forbidden("Cannot delete another user's subscription")
	}
	if err := h.svc.Push.Delete(sub.ID); err != nil {
		return nil, dto.InternalWithError("Failed to delete push subscription", err)
	}
	return &dto.UnsubscribePushResponse{}, nil
}

// GetVAPIDKey returns the server's VAPID public key. Browsers need it to
// create a push subscription.
func (h *PushHandler) GetVAPIDKey(ctx context.Context, _ *identity.User, _ *dto.GetVAPIDKeyRequest) (*dto.GetVAPIDKeyResponse, error) {
	if h.cfg.WebPush.VAPIDPublicKey == "" {
		return nil, dto.NotFound("VAPID key")
	}
	return &dto.GetVAPIDKeyResponse{PublicKey: h.cfg.WebPush.VAPIDPublicKey}, nil
}
