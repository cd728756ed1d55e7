// Defines shared service dependencies for handlers.

// Package handlers implements the HTTP API handlers: admin authentication,
// form configuration, database schema browsing, manifest import/export, and
// the public form endpoints.
package handlers

import (
	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/ipgeo"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage/git"
)

// Services holds all service dependencies for handlers.
type Services struct {
	User       *identity.UserService
	Session    *identity.SessionService
	Form       *forms.FormService
	Notion     *forms.Service
	Client     forms.NotionClient // nil until a Notion token is configured
	Submission *storage.SubmissionService
	Push       *storage.PushSubscriptionService
	Repo       *git.Repo
	IPGeo      *ipgeo.Checker // may be nil
}

// Config holds configuration values needed by handlers.
type Config struct {
	JWTSecret []byte
	BaseURL   string
	Version   string
	Quotas    storage.ServerQuotas
	WebPush   storage.WebPushConfig
}

// GitAuthor converts a user to a git commit author.
func GitAuthor(user *identity.User) git.Author {
	if user == nil {
		return git.Author{}
	}
	return git.Author{Name: user.Name, Email: user.Email}
}
