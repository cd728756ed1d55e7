// HTTP route registration.

package server

import (
	"net/http"

	"github.com/realsalbednarz/notion-form-sub000/internal/server/handlers"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/ratelimit"
)

// NewRouter builds the HTTP handler tree. The admin API lives under /api and
// requires a Bearer token; the visitor surface lives under /f and is public.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limiters *ratelimit.Limiters) http.Handler {
	auth := handlers.NewAuthHandler(svc, cfg)
	forms := handlers.NewFormsHandler(svc)
	databases := handlers.NewDatabaseHandler(svc)
	manifest := handlers.NewManifestHandler(svc)
	push := handlers.NewPushHandler(svc, cfg)
	public := handlers.NewPublicHandler(svc, cfg)
	health := handlers.NewHealthHandler(cfg.Version)

	mux := http.NewServeMux()

	mux.Handle("GET /api/health", Wrap(health.Health, svc, cfg, limiters))

	mux.Handle("POST /api/auth/login", Wrap(auth.Login, svc, cfg, limiters))
	mux.Handle("POST /api/auth/logout", WrapAuth(auth.Logout, svc, cfg, limiters))
	mux.Handle("GET /api/auth/me", WrapAuth(auth.GetMe, svc, cfg, limiters))
	mux.Handle("GET /api/auth/sessions", WrapAuth(auth.ListSessions, svc, cfg, limiters))
	mux.Handle("DELETE /api/auth/sessions/{sessionID}", WrapAuth(auth.RevokeSession, svc, cfg, limiters))
	mux.Handle("POST /api/auth/sessions/revoke-all", WrapAuth(auth.RevokeAllSessions, svc, cfg, limiters))

	mux.Handle("GET /api/forms", WrapAuth(forms.ListForms, svc, cfg, limiters))
	mux.Handle("POST /api/forms", WrapAuth(forms.CreateForm, svc, cfg, limiters))
	mux.Handle("GET /api/forms/{formID}", WrapAuth(forms.GetForm, svc, cfg, limiters))
	mux.Handle("PUT /api/forms/{formID}", WrapAuth(forms.UpdateForm, svc, cfg, limiters))
	mux.Handle("DELETE /api/forms/{formID}", WrapAuth(forms.DeleteForm, svc, cfg, limiters))
	mux.Handle("POST /api/forms/{formID}/publish", WrapAuth(forms.PublishForm, svc, cfg, limiters))
	mux.Handle("GET /api/forms/{formID}/submissions", WrapAuth(forms.ListSubmissions, svc, cfg, limiters))

	mux.Handle("GET /api/databases/{databaseID}", WrapAuth(databases.GetDatabase, svc, cfg, limiters))

	mux.Handle("GET /api/manifest", WrapAuth(manifest.ExportManifest, svc, cfg, limiters))
	mux.Handle("PUT /api/manifest", WrapAuth(manifest.ImportManifest, svc, cfg, limiters))

	mux.Handle("POST /api/push/subscriptions", WrapAuth(push.Subscribe, svc, cfg, limiters))
	mux.Handle("DELETE /api/push/subscriptions/{subID}", WrapAuth(push.Unsubscribe, svc, cfg, limiters))
	mux.Handle("GET /api/push/vapid-key", WrapAuth(push.GetVAPIDKey, svc, cfg, limiters))

	mux.Handle("GET /f/{slug}", Wrap(public.RenderForm, svc, cfg, limiters))
	mux.Handle("POST /f/{slug}", Wrap(public.SubmitForm, svc, cfg, limiters))
	mux.Handle("GET /f/{slug}/rows", Wrap(public.ListRows, svc, cfg, limiters))
	mux.Handle("PATCH /f/{slug}/rows/{pageID}", Wrap(public.UpdateRow, svc, cfg, limiters))

	return mux
}
