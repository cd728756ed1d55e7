// Handles admin authentication and session management.

package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maruel/ksid"

	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/reqctx"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

const tokenExpiration = 24 * time.Hour

// AuthHandler handles authentication requests.
type AuthHandler struct {
	svc *Services
	cfg *Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *Services, cfg *Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Login handles admin login and returns a JWT token.
func (h *AuthHandler) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := h.svc.User.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, dto.NewAPIError(401, dto.ErrorCodeUnauthorized, "Invalid credentials")
	}

	token, err := h.GenerateTokenWithSession(user, reqctx.ClientIP(ctx), reqctx.UserAgent(ctx), reqctx.CountryCode(ctx))
	if err != nil {
		return nil, dto.InternalWithError("Failed to generate token", err)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  userToResponse(user),
	}, nil
}

// GenerateTokenWithSession creates a session and signs a JWT carrying its ID.
func (h *AuthHandler) GenerateTokenWithSession(user *identity.User, clientIP, userAgent, countryCode string) (string, error) {
	expiresAt := time.Now().Add(tokenExpiration)

	// Pre-generate session ID so we can include it in the JWT
	sessionID := ksid.NewID()

	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"sid": sessionID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.cfg.JWTSecret)
	if err != nil {
		return "", err
	}

	deviceInfo := userAgent
	if len(deviceInfo) > 200 {
		deviceInfo = deviceInfo[:200]
	}
	_, err = h.svc.Session.CreateWithID(sessionID, user.ID, hashToken(tokenString), deviceInfo,
		clientIP, countryCode, storage.ToTime(expiresAt), h.cfg.Quotas.MaxSessionsPerUser)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// hashToken returns the hex SHA-256 digest of a token. Sessions store the
// digest so a leaked table cannot replay tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GetMe returns the current user info.
func (h *AuthHandler) GetMe(ctx context.Context, user *identity.User, _ *dto.GetMeRequest) (*dto.UserResponse, error) {
	return userToResponse(user), nil
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(ctx context.Context, _ *identity.User, _ *dto.LogoutRequest) (*dto.LogoutResponse, error) {
	sessionID := reqctx.SessionID(ctx)
	if sessionID.IsZero() {
		return &dto.LogoutResponse{Ok: true}, nil
	}

	if err := h.svc.Session.Revoke(sessionID); err != nil {
		slog.ErrorContext(ctx, "Failed to revoke session", "err", err, "session_id", sessionID)
		return nil, dto.InternalWithError("Failed to logout", err)
	}

	return &dto.LogoutResponse{Ok: true}, nil
}

// ListSessions returns all active sessions for the current user.
func (h *AuthHandler) ListSessions(ctx context.Context, user *identity.User, _ *dto.ListSessionsRequest) (*dto.ListSessionsResponse, error) {
	currentSessionID := reqctx.SessionID(ctx)

	sessions := make([]dto.SessionResponse, 0, 8)
	for session := range h.svc.Session.ActiveByUserID(user.ID) {
		sessions = append(sessions, dto.SessionResponse{
			ID:          session.ID,
			DeviceInfo:  session.DeviceInfo,
			IPAddress:   session.IPAddress,
			CountryCode: session.CountryCode,
			Created:     timeToString(session.Created),
			LastUsed:    timeToString(session.LastUsed),
			IsCurrent:   session.ID == currentSessionID,
		})
	}

	return &dto.ListSessionsResponse{Sessions: sessions}, nil
}

// RevokeSession revokes a specific session.
func (h *AuthHandler) RevokeSession(ctx context.Context, user *identity.User, req *dto.RevokeSessionRequest) (*dto.RevokeSessionResponse, error) {
	session, err := h.svc.Session.Get(req.SessionID)
	if err != nil {
		return nil, dto.NotFound("Session")
	}
	if session.UserID != user.ID {
		return nil, dto.Forbidden("Cannot revoke another user's session")
	}

	if err := h.svc.Session.Revoke(req.SessionID); err != nil {
		return nil, dto.InternalWithError("Failed to revoke session", err)
	}

	return &dto.RevokeSessionResponse{Ok: true}, nil
}

// RevokeAllSessions revokes all sessions for the current user except the current one.
func (h *AuthHandler) RevokeAllSessions(ctx context.Context, user *identity.User, _ *dto.RevokeAllSessionsRequest) (*dto.RevokeAllSessionsResponse, error) {
	currentSessionID := reqctx.SessionID(ctx)

	var toRevoke []ksid.ID
	for session := range h.svc.Session.ActiveByUserID(user.ID) {
		if session.ID != currentSessionID {
			toRevoke = append(toRevoke, session.ID)
		}
	}

	revokedCount := 0
	for _, id := range toRevoke {
		if err := h.svc.Session.Revoke(id); err != nil {
			slog.ErrorContext(ctx, "Failed to revoke session", "err", err, "session_id", id)
			continue
		}
		revokedCount++
	}

	return &dto.RevokeAllSessionsResponse{RevokedCount: revokedCount}, nil
}
