package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/api/handler"
	"github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/repository/memory"
	"github.com/ethdomperin2018/ai-assist/internal/security"
	"github.com/ethdomperin2018/ai-assist/internal/service"
	"github.com/ethdomperin2018/ai-assist/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// stubProvider answers every completion with content
type stubProvider struct {
	name    string
	content string
	lastReq llm.Request
}

func (p *stubProvider) Name() string              { return p.name }
func (p *stubProvider) AvailableModels() []string { return []string{"stub"} }
func (p *stubProvider) DefaultModel() string      { return "stub" }
func (p *stubProvider) IsConfigured() bool        { return true }

func (p *stubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	p.lastReq = req
	return &llm.Response{Content: p.content, Model: "stub"}, nil
}

type testAPI struct {
	store         *memory.Store
	llmRouter     *llm.Router
	notifications *service.NotificationService
	client        domain.User
	staff         domain.User
	request       domain.Request
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	client := store.AddUser(domain.User{Username: "carol", Role: domain.UserRoleClient})
	staff := store.AddUser(domain.User{Username: "alice", Role: domain.UserRoleTeamMember})
	request := store.AddRequest(domain.Request{UserID: client.ID, Title: "Market report", Status: domain.RequestStatusInProgress})

	return &testAPI{
		store:         store,
		llmRouter:     llm.NewRouter("openai"),
		notifications: service.NewNotificationService(memory.NewNotificationStore(), store, nil, nil),
		client:        client,
		staff:         staff,
		request:       request,
	}
}

// router mounts the handlers the way the API does, authenticated as user
func (a *testAPI) router(user domain.User) http.Handler {
	notificationHandler := handler.NewNotificationHandler(a.notifications)
	recommendationHandler := handler.NewRecommendationHandler(service.NewRecommendationService(a.store, nil))
	workspaceHandler := handler.NewWorkspaceHandler(workspace.NewCoordinator(a.store, nil, nil))
	aiHandler := handler.NewAIHandler(service.NewAIService(a.llmRouter, 0), a.store)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &security.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	})

	r.Get("/notifications", notificationHandler.List)
	r.Post("/notifications", notificationHandler.Create)
	r.Post("/notifications/{notificationID}/read", notificationHandler.MarkRead)
	r.Delete("/notifications/{notificationID}", notificationHandler.Delete)
	r.Post("/requests/{requestID}/reminders/deadline", notificationHandler.DeadlineReminder)
	r.Post("/meetings/{meetingID}/reminder", notificationHandler.MeetingReminder)
	r.Post("/recommendations/steps", recommendationHandler.Steps)
	r.Get("/requests/{requestID}/recommendations/resources", recommendationHandler.Resources)
	r.Get("/workspaces/{requestID}", workspaceHandler.Get)
	r.Post("/ai/analyze-request", aiHandler.AnalyzeRequest)
	r.Post("/ai/draft-contract", aiHandler.DraftContract)
	r.Post("/ai/chat-response", aiHandler.ChatResponse)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func (a *testAPI) notify(t *testing.T, userID int64) domain.Notification {
	t.Helper()
	n, err := a.notifications.CreateNotification(context.Background(), domain.NotificationCreate{
		UserID:   userID,
		Title:    "Heads up",
		Message:  "Something happened",
		Type:     domain.NotificationTypeMessage,
		Priority: domain.PriorityLow,
	})
	require.NoError(t, err)
	return *n
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		rec, env := do(t, handler.ReadyCheck(map[string]handler.Pinger{"postgres": ok}), http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("a dependency down", func(t *testing.T) {
		rec, env := do(t, handler.ReadyCheck(map[string]handler.Pinger{"postgres": ok, "redis": down}), http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, env.Success)

		var failed map[string]string
		require.NoError(t, json.Unmarshal(env.Error, &failed))
		assert.Equal(t, map[string]string{"redis": "connection refused"}, failed)
	})
}

func TestNotificationHandler_List(t *testing.T) {
	api := newTestAPI(t)
	api.notify(t, api.client.ID)
	api.notify(t, api.staff.ID)

	t.Run("own notifications", func(t *testing.T) {
		rec, env := do(t, api.router(api.client), http.MethodGet, "/notifications", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, api.client.ID, list[0].UserID)
	})

	t.Run("staff may list another user", func(t *testing.T) {
		rec, env := do(t, api.router(api.staff), http.MethodGet, "/notifications?userId=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, api.client.ID, list[0].UserID)
	})

	t.Run("client may not list another user", func(t *testing.T) {
		rec, _ := do(t, api.router(api.client), http.MethodGet, "/notifications?userId=2", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestNotificationHandler_Create(t *testing.T) {
	api := newTestAPI(t)
	h := api.router(api.staff)

	t.Run("valid body", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/notifications", map[string]any{
			"userId":   api.client.ID,
			"title":    "Invoice ready",
			"message":  "Your invoice is ready",
			"type":     "payment",
			"priority": "medium",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var n domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &n))
		assert.Equal(t, int64(1), n.ID)
		assert.False(t, n.IsRead)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/notifications", map[string]any{
			"userId":   api.client.ID,
			"title":    "Invoice ready",
			"message":  "Your invoice is ready",
			"type":     "gossip",
			"priority": "medium",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Error, &fields))
		assert.Contains(t, fields, "Type")
	})
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	api := newTestAPI(t)
	n := api.notify(t, api.staff.ID)

	t.Run("hidden from other clients", func(t *testing.T) {
		rec, _ := do(t, api.router(api.client), http.MethodPost, "/notifications/1/read", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		stored, err := api.notifications.GetNotification(context.Background(), n.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsRead)
	})

	t.Run("owner marks read", func(t *testing.T) {
		rec, env := do(t, api.router(api.staff), http.MethodPost, "/notifications/1/read", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.True(t, updated.IsRead)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, _ := do(t, api.router(api.staff), http.MethodPost, "/notifications/99/read", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non numeric id", func(t *testing.T) {
		rec, _ := do(t, api.router(api.staff), http.MethodPost, "/notifications/abc/read", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationHandler_Delete(t *testing.T) {
	api := newTestAPI(t)
	api.notify(t, api.client.ID)
	h := api.router(api.client)

	rec, _ := do(t, h, http.MethodDelete, "/notifications/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/notifications/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationHandler_Reminders(t *testing.T) {
	api := newTestAPI(t)
	h := api.router(api.staff)

	t.Run("deadline reminder for a known request", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, "/requests/1/reminders/deadline", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var n domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &n))
		assert.Equal(t, api.client.ID, n.UserID)
		assert.Equal(t, domain.PriorityHigh, n.Priority)
	})

	t.Run("deadline reminder for an unknown request", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/requests/99/reminders/deadline", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("meeting reminder for an unknown meeting", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/meetings/5/reminder", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRecommendationHandler_Steps_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec, env := do(t, api.router(api.client), http.MethodPost, "/recommendations/steps", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &fields))
	assert.Equal(t, "field is required", fields["Description"])
}

func TestRecommendationHandler_Resources_UnknownRequest(t *testing.T) {
	api := newTestAPI(t)

	rec, env := do(t, api.router(api.staff), http.MethodGet, "/requests/99/recommendations/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestWorkspaceHandler_Get_NoSession(t *testing.T) {
	api := newTestAPI(t)

	rec, env := do(t, api.router(api.staff), http.MethodGet, "/workspaces/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestAIHandler_AnalyzeRequest(t *testing.T) {
	api := newTestAPI(t)
	openai := &stubProvider{name: "openai", content: `{"plan":[{"step":"Collect data","assignedTo":"ai","estimatedHours":1}],"costEstimateRange":{"min":50,"max":90},"summary":"s"}`}
	anthropic := &stubProvider{name: "anthropic", content: `{"plan":[{"step":"Review clauses","assignedTo":"human","estimatedHours":3}],"costEstimateRange":{"min":300,"max":500},"summary":"legal"}`}
	api.llmRouter.RegisterProvider(openai)
	api.llmRouter.RegisterProvider(anthropic)
	h := api.router(api.client)

	rec, env := do(t, h, http.MethodPost, "/ai/analyze-request", map[string]any{
		"requestDescription": "Review my lease",
		"taskType":           "legal",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis domain.AIAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &analysis))
	require.Len(t, analysis.Plan, 1)
	assert.Equal(t, "Review clauses", analysis.Plan[0].Step)
	assert.Contains(t, anthropic.lastReq.Prompt, "Review my lease")

	rec, _ = do(t, h, http.MethodPost, "/ai/analyze-request", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAIHandler_NoProvider(t *testing.T) {
	api := newTestAPI(t)

	rec, env := do(t, api.router(api.client), http.MethodPost, "/ai/analyze-request", map[string]any{
		"requestDescription": "Plan a trip",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestAIHandler_DraftContract(t *testing.T) {
	api := newTestAPI(t)
	anthropic := &stubProvider{name: "anthropic", content: "SERVICE AGREEMENT"}
	api.llmRouter.RegisterProvider(&stubProvider{name: "openai", content: "unused"})
	api.llmRouter.RegisterProvider(anthropic)
	stranger := api.store.AddUser(domain.User{Username: "dave", Role: domain.UserRoleClient})

	body := map[string]any{"requestId": api.request.ID, "details": "Market report, 2 weeks"}

	t.Run("owner", func(t *testing.T) {
		rec, env := do(t, api.router(api.client), http.MethodPost, "/ai/draft-contract", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var draft domain.ContractDraft
		require.NoError(t, json.Unmarshal(env.Data, &draft))
		assert.Equal(t, "SERVICE AGREEMENT", draft.ContractContent)
		assert.Contains(t, anthropic.lastReq.Prompt, "Market report, 2 weeks")
	})

	t.Run("staff", func(t *testing.T) {
		rec, _ := do(t, api.router(api.staff), http.MethodPost, "/ai/draft-contract", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other client", func(t *testing.T) {
		rec, _ := do(t, api.router(stranger), http.MethodPost, "/ai/draft-contract", body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown request", func(t *testing.T) {
		rec, _ := do(t, api.router(api.staff), http.MethodPost, "/ai/draft-contract", map[string]any{"requestId": 999, "details": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing details", func(t *testing.T) {
		rec, _ := do(t, api.router(api.client), http.MethodPost, "/ai/draft-contract", map[string]any{"requestId": api.request.ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAIHandler_ChatResponse(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	openai := &stubProvider{name: "openai", content: "The draft is due Friday."}
	api.llmRouter.RegisterProvider(openai)

	_, err := api.store.CreateMessage(ctx, domain.MessageCreate{RequestID: api.request.ID, SenderID: "1", Content: "When is the draft due?", Type: domain.MessageTypeChat})
	require.NoError(t, err)
	_, err = api.store.CreateMessage(ctx, domain.MessageCreate{RequestID: api.request.ID, SenderID: "2", Content: "internal note", Type: domain.MessageTypeComment})
	require.NoError(t, err)

	rec, env := do(t, api.router(api.client), http.MethodPost, "/ai/chat-response", map[string]any{"requestId": api.request.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "The draft is due Friday.", data["response"])
	assert.Equal(t, "Client: When is the draft due?\nAssistant:", openai.lastReq.Prompt)
	assert.NotContains(t, openai.lastReq.Prompt, "internal note")

	rec, _ = do(t, api.router(api.client), http.MethodPost, "/ai/chat-response", map[string]any{"requestId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
