package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/realsalbednarz/notion-form-sub000/internal/forms"
	"github.com/realsalbednarz/notion-form-sub000/internal/identity"
	"github.com/realsalbednarz/notion-form-sub000/internal/notion"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/dto"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/handlers"
	"github.com/realsalbednarz/notion-form-sub000/internal/server/ratelimit"
	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

var testJWTSecret = []byte("test-secret-key-32-bytes-long!!!")

// fakeNotion implements forms.NotionClient in memory.
type fakeNotion struct {
	db    *notion.Database
	pages []notion.Page
}

func (f *fakeNotion) GetDatabase(_ context.Context, _ string) (*notion.Database, error) {
	return f.db, nil
}

func (f *fakeNotion) QueryDatabaseAll(_ context.Context, _ string, _ *notion.QueryOptions) ([]notion.Page, error) {
	return f.pages, nil
}

func (f *fakeNotion) CreatePage(_ context.Context, _ string, _ map[string]notion.PropertyPayload) (*notion.Page, error) {
	return &notion.Page{ID: "page-new"}, nil
}

func (f *fakeNotion) UpdatePage(_ context.Context, pageID string, _ map[string]notion.PropertyPayload) (*notion.Page, error) {
	return &notion.Page{ID: pageID}, nil
}

func testNotionDatabase() *notion.Database {
	return &notion.Database{
		ID:    "db-1",
		Title: []notion.RichText{{PlainText: "Contacts"}},
		Properties: map[string]notion.DBProperty{
			"Name":  {ID: "title", Name: "Name", Type: notion.TypeTitle},
			"Email": {ID: "em%40l", Name: "Email", Type: notion.TypeEmail},
		},
	}
}

type testEnv struct {
	server      *httptest.Server
	userService *identity.UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithLimits(t, storage.DefaultRateLimits())
}

func setupTestEnvWithLimits(t *testing.T, rl storage.RateLimits) *testEnv {
	tempDir := t.TempDir()

	userService, err := identity.NewUserService(filepath.Join(tempDir, "users.jsonl"))
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	sessionService, err := identity.NewSessionService(filepath.Join(tempDir, "sessions.jsonl"))
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	quotas := storage.DefaultServerQuotas()
	formService, err := forms.NewFormService(filepath.Join(tempDir, "forms.jsonl"), quotas.MaxForms)
	if err != nil {
		t.Fatalf("NewFormService: %v", err)
	}
	submissionService, err := storage.NewSubmissionService(filepath.Join(tempDir, "submissions.jsonl"))
	if err != nil {
		t.Fatalf("NewSubmissionService: %v", err)
	}
	pushService, err := storage.NewPushSubscriptionService(filepath.Join(tempDir, "push_subscriptions.jsonl"))
	if err != nil {
		t.Fatalf("NewPushSubscriptionService: %v", err)
	}

	client := &fakeNotion{db: testNotionDatabase()}
	svc := &handlers.Services{
		User:       userService,
		Session:    sessionService,
		Form:       formService,
		Notion:     forms.NewService(client, slog.New(slog.DiscardHandler), quotas.MaxRowsPerQuery),
		Client:     client,
		Submission: submissionService,
		Push:       pushService,
	}
	cfg := &handlers.Config{
		JWTSecret: testJWTSecret,
		BaseURL:   "http://localhost:8080",
		Version:   "test",
		Quotas:    quotas,
	}
	limiters := ratelimit.NewLimiters(rl)
	t.Cleanup(limiters.Close)

	server := httptest.NewServer(NewRouter(svc, cfg, limiters))
	t.Cleanup(server.Close)

	return &testEnv{server: server, userService: userService}
}

// login creates an admin user and returns a valid token.
func (e *testEnv) login(t *testing.T) string {
	if _, err := e.userService.Create("admin@example.com", "securePass1234", "Admin"); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	var resp dto.AuthResponse
	status := e.doJSON(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email:    "admin@example.com",
		Password: "securePass1234",
	}, &resp, "")
	if status != http.StatusOK {
		t.Fatalf("POST /api/auth/login: got status %d, want %d", status, http.StatusOK)
	}
	if resp.Token == "" {
		t.Fatal("Login should return a token")
	}
	return resp.Token
}

// doJSON performs an HTTP request, decodes the JSON response, and returns the status code.
// Body is always read and closed before returning.
func (e *testEnv) doJSON(t *testing.T, method, path string, body, response any, token string) int {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do request: %v", err)
	}

	data, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		t.Fatalf("ReadAll/Close: %v", err)
	}

	if response != nil && len(data) > 0 {
		if err := json.Unmarshal(data, response); err != nil {
			t.Fatalf("Unmarshal response: %v\nBody: %s", err, string(data))
		}
	}

	return resp.StatusCode
}

func contactFormRequest() dto.CreateFormRequest {
	return dto.CreateFormRequest{
		Slug:       "contact",
		Name:       "Contact us",
		DatabaseID: "db-1",
		Mode:       "create",
		Fields: []dto.FormFieldPayload{
			{PropertyID: "title", PropertyType: "title", Required: true},
			{PropertyID: "em%40l", PropertyType: "email"},
		},
		Confirmation: "Thanks!",
	}
}

func TestIntegration(t *testing.T) {
	t.Parallel()
	t.Run("Health", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)

		var health dto.HealthResponse
		status := env.doJSON(t, http.MethodGet, "/api/health", nil, &health, "")
		if status != http.StatusOK {
			t.Errorf("GET /api/health: got status %d, want %d", status, http.StatusOK)
		}
		if health.Status != "ok" {
			t.Errorf("Health status: got %q, want %q", health.Status, "ok")
		}
		if health.Version != "test" {
			t.Errorf("Health version: got %q, want %q", health.Version, "test")
		}
	})

	t.Run("AuthWorkflow", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		var meResp dto.UserResponse
		status := env.doJSON(t, http.MethodGet, "/api/auth/me", nil, &meResp, token)
		if status != http.StatusOK {
			t.Fatalf("GET /api/auth/me: got status %d, want %d", status, http.StatusOK)
		}
		if meResp.Email != "admin@example.com" {
			t.Errorf("Me email: got %q, want %q", meResp.Email, "admin@example.com")
		}

		// Wrong password is rejected.
		status = env.doJSON(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Email:    "admin@example.com",
			Password: "wrongpassword",
		}, nil, "")
		if status != http.StatusUnauthorized {
			t.Errorf("Login with wrong password: got status %d, want %d", status, http.StatusUnauthorized)
		}

		// The session shows up and is marked current.
		var sessions dto.ListSessionsResponse
		status = env.doJSON(t, http.MethodGet, "/api/auth/sessions", nil, &sessions, token)
		if status != http.StatusOK {
			t.Fatalf("GET /api/auth/sessions: got status %d, want %d", status, http.StatusOK)
		}
		if len(sessions.Sessions) != 1 || !sessions.Sessions[0].IsCurrent {
			t.Errorf("Sessions: got %+v, want one current session", sessions.Sessions)
		}

		// Logout revokes the session; the token stops working.
		status = env.doJSON(t, http.MethodPost, "/api/auth/logout", nil, nil, token)
		if status != http.StatusOK {
			t.Fatalf("POST /api/auth/logout: got status %d, want %d", status, http.StatusOK)
		}
		status = env.doJSON(t, http.MethodGet, "/api/auth/me", nil, nil, token)
		if status != http.StatusUnauthorized {
			t.Errorf("GET /api/auth/me after logout: got status %d, want %d", status, http.StatusUnauthorized)
		}
	})

	t.Run("AuthMiddleware", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)

		status := env.doJSON(t, http.MethodGet, "/api/auth/me", nil, nil, "")
		if status != http.StatusUnauthorized {
			t.Errorf("GET /api/auth/me without token: got status %d, want %d", status, http.StatusUnauthorized)
		}
		status = env.doJSON(t, http.MethodGet, "/api/auth/me", nil, nil, "invalid-token")
		if status != http.StatusUnauthorized {
			t.Errorf("GET /api/auth/me with invalid token: got status %d, want %d", status, http.StatusUnauthorized)
		}
	})

	t.Run("FormLifecycle", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		var created dto.FormResponse
		status := env.doJSON(t, http.MethodPost, "/api/forms", contactFormRequest(), &created, token)
		if status != http.StatusOK {
			t.Fatalf("POST /api/forms: got status %d, want %d", status, http.StatusOK)
		}
		if created.Slug != "contact" || created.Published {
			t.Errorf("Created form: got %+v, want unpublished contact form", created)
		}

		// Unpublished forms are invisible to visitors.
		status = env.doJSON(t, http.MethodGet, "/f/contact", nil, nil, "")
		if status != http.StatusNotFound {
			t.Errorf("GET /f/contact before publish: got status %d, want %d", status, http.StatusNotFound)
		}

		status = env.doJSON(t, http.MethodPost, "/api/forms/"+created.ID.String()+"/publish",
			dto.PublishFormRequest{Published: true}, nil, token)
		if status != http.StatusOK {
			t.Fatalf("POST publish: got status %d, want %d", status, http.StatusOK)
		}

		var rendered dto.RenderFormResponse
		status = env.doJSON(t, http.MethodGet, "/f/contact", nil, &rendered, "")
		if status != http.StatusOK {
			t.Fatalf("GET /f/contact: got status %d, want %d", status, http.StatusOK)
		}
		if len(rendered.Fields) != 2 {
			t.Errorf("Rendered fields: got %+v, want 2 fields", rendered.Fields)
		}

		// Duplicate slugs are rejected.
		status = env.doJSON(t, http.MethodPost, "/api/forms", contactFormRequest(), nil, token)
		if status != http.StatusConflict {
			t.Errorf("POST duplicate slug: got status %d, want %d", status, http.StatusConflict)
		}

		var list dto.ListFormsResponse
		status = env.doJSON(t, http.MethodGet, "/api/forms", nil, &list, token)
		if status != http.StatusOK {
			t.Fatalf("GET /api/forms: got status %d, want %d", status, http.StatusOK)
		}
		if len(list.Forms) != 1 {
			t.Errorf("Forms: got %+v, want 1 form", list.Forms)
		}

		status = env.doJSON(t, http.MethodDelete, "/api/forms/"+created.ID.String(), nil, nil, token)
		if status != http.StatusOK {
			t.Fatalf("DELETE form: got status %d, want %d", status, http.StatusOK)
		}
		status = env.doJSON(t, http.MethodGet, "/api/forms/"+created.ID.String(), nil, nil, token)
		if status != http.StatusNotFound {
			t.Errorf("GET deleted form: got status %d, want %d", status, http.StatusNotFound)
		}
	})

	t.Run("PublicSubmission", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		var created dto.FormResponse
		if status := env.doJSON(t, http.MethodPost, "/api/forms", contactFormRequest(), &created, token); status != http.StatusOK {
			t.Fatalf("POST /api/forms: got status %d", status)
		}
		if status := env.doJSON(t, http.MethodPost, "/api/forms/"+created.ID.String()+"/publish",
			dto.PublishFormRequest{Published: true}, nil, token); status != http.StatusOK {
			t.Fatalf("POST publish: got status %d", status)
		}

		// Missing required field fails validation.
		status := env.doJSON(t, http.MethodPost, "/f/contact", dto.SubmitFormRequest{
			Values: map[string]any{"em%40l": "ada@example.com"},
		}, nil, "")
		if status != http.StatusBadRequest {
			t.Errorf("Submit without required field: got status %d, want %d", status, http.StatusBadRequest)
		}

		var submitted dto.SubmitFormResponse
		status = env.doJSON(t, http.MethodPost, "/f/contact", dto.SubmitFormRequest{
			Values: map[string]any{"title": "Ada", "em%40l": "ada@example.com"},
		}, &submitted, "")
		if status != http.StatusOK {
			t.Fatalf("POST /f/contact: got status %d, want %d", status, http.StatusOK)
		}
		if submitted.PageID != "page-new" {
			t.Errorf("Submitted page ID: got %q, want %q", submitted.PageID, "page-new")
		}
		if submitted.Confirmation != "Thanks!" {
			t.Errorf("Confirmation: got %q, want %q", submitted.Confirmation, "Thanks!")
		}

		// The submission log recorded it.
		var log dto.ListFormSubmissionsResponse
		status = env.doJSON(t, http.MethodGet, "/api/forms/"+created.ID.String()+"/submissions", nil, &log, token)
		if status != http.StatusOK {
			t.Fatalf("GET submissions: got status %d, want %d", status, http.StatusOK)
		}
		if len(log.Submissions) != 1 || log.Submissions[0].PageID != "page-new" {
			t.Errorf("Submissions: got %+v, want one entry for page-new", log.Submissions)
		}
	})

	t.Run("DatabaseBrowse", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		var db dto.GetDatabaseResponse
		status := env.doJSON(t, http.MethodGet, "/api/databases/db-1", nil, &db, token)
		if status != http.StatusOK {
			t.Fatalf("GET /api/databases/db-1: got status %d, want %d", status, http.StatusOK)
		}
		if db.Title != "Contacts" {
			t.Errorf("Title: got %q, want %q", db.Title, "Contacts")
		}
		if len(db.Properties) != 2 || db.Properties[0].Name != "Email" {
			t.Errorf("Properties: got %+v, want Email then Name", db.Properties)
		}
	})

	t.Run("ManifestRoundTrip", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		if status := env.doJSON(t, http.MethodPost, "/api/forms", contactFormRequest(), nil, token); status != http.StatusOK {
			t.Fatalf("POST /api/forms: got status %d", status)
		}

		var exported dto.ExportManifestResponse
		status := env.doJSON(t, http.MethodGet, "/api/manifest", nil, &exported, token)
		if status != http.StatusOK {
			t.Fatalf("GET /api/manifest: got status %d, want %d", status, http.StatusOK)
		}
		if exported.Manifest == "" {
			t.Fatal("Manifest should not be empty")
		}

		// Re-importing the same manifest updates rather than duplicates.
		var imported dto.ImportManifestResponse
		status = env.doJSON(t, http.MethodPut, "/api/manifest",
			dto.ImportManifestRequest{Manifest: exported.Manifest}, &imported, token)
		if status != http.StatusOK {
			t.Fatalf("PUT /api/manifest: got status %d, want %d", status, http.StatusOK)
		}
		if imported.Created != 0 || imported.Updated != 1 {
			t.Errorf("Import: got created=%d updated=%d, want 0/1", imported.Created, imported.Updated)
		}
	})

	t.Run("PushSubscriptions", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnv(t)
		token := env.login(t)

		var sub dto.SubscribePushResponse
		status := env.doJSON(t, http.MethodPost, "/api/push/subscriptions", dto.SubscribePushRequest{
			Endpoint: "https://push.example.com/send/abc",
			Keys:     dto.PushKeys{P256dh: "p256dh-key", Auth: "auth-key"},
		}, &sub, token)
		if status != http.StatusOK {
			t.Fatalf("POST /api/push/subscriptions: got status %d, want %d", status, http.StatusOK)
		}
		if sub.ID.IsZero() {
			t.Fatal("Subscription ID should be set")
		}

		status = env.doJSON(t, http.MethodDelete, "/api/push/subscriptions/"+sub.ID.String(), nil, nil, token)
		if status != http.StatusOK {
			t.Errorf("DELETE subscription: got status %d, want %d", status, http.StatusOK)
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		t.Parallel()
		env := setupTestEnvWithLimits(t, storage.RateLimits{AuthRatePerMin: 6})

		login := dto.LoginRequest{Email: "nobody@example.com", Password: "wrong-password"}
		var status int
		for range 6 {
			status = env.doJSON(t, http.MethodPost, "/api/auth/login", login, nil, "")
		}
		if status != http.StatusTooManyRequests {
			t.Errorf("6th login attempt: got status %d, want %d", status, http.StatusTooManyRequests)
		}
	})
}
