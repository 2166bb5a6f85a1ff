package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kavyanshpal/kpchat/internal/service/ai"
	authservice "github.com/kavyanshpal/kpchat/internal/service/auth"
	chatservice "github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/exchange"
	prefsservice "github.com/kavyanshpal/kpchat/internal/service/prefs"
	"github.com/kavyanshpal/kpchat/internal/store"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	return f.reply, f.err
}

func setupRouter(t *testing.T, completer ai.Completer) *chi.Mux {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "kpchat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := authservice.NewService(st)
	chatSvc := chatservice.NewService(st)
	prefsSvc := prefsservice.NewService(st)

	identity, err := authSvc.Register("KP", "kp@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := chatSvc.Ensure(identity.ID); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	var controller *exchange.Controller
	if completer != nil {
		controller = exchange.NewController(authSvc, chatSvc, prefsSvc, completer, nil, time.Minute, zap.NewNop())
	}

	r := chi.NewRouter()
	New(controller).RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r *chi.Mux, text string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"text": text})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSendReturnsExchangeResult(t *testing.T) {
	r := setupRouter(t, &fakeCompleter{reply: "hello there"})

	resp := postChat(t, r, "hi")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result exchange.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.State != exchange.StateFulfilled {
		t.Fatalf("expected fulfilled state, got %q", result.State)
	}
	if result.ModelTurn == nil || result.ModelTurn.Text != "hello there" {
		t.Fatalf("expected model reply, got %+v", result.ModelTurn)
	}
}

func TestSendWithoutCompleterUnavailable(t *testing.T) {
	r := setupRouter(t, nil)

	resp := postChat(t, r, "hi")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestSendBlankTextIgnored(t *testing.T) {
	r := setupRouter(t, &fakeCompleter{reply: "never"})

	resp := postChat(t, r, "   ")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ignored" {
		t.Fatalf("expected ignored status, got %+v", body)
	}
}

func TestSendInvalidBody(t *testing.T) {
	r := setupRouter(t, &fakeCompleter{reply: "never"})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSuggestions(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var suggestions []string
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(suggestions) != len(Suggestions) {
		t.Fatalf("expected %d suggestions, got %d", len(Suggestions), len(suggestions))
	}
}
