package conversation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/kavyanshpal/kpchat/internal/model/chat"
	authservice "github.com/kavyanshpal/kpchat/internal/service/auth"
	chatservice "github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/render"
	"github.com/kavyanshpal/kpchat/internal/store"
)

type fixture struct {
	router    *chi.Mux
	chatSvc   *chatservice.Service
	accountID string
}

func setup(t *testing.T) fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "kpchat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := authservice.NewService(st)
	chatSvc := chatservice.NewService(st)

	identity, err := authSvc.Register("KP", "kp@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r := chi.NewRouter()
	New(authSvc, chatSvc, render.New()).RegisterRoutes(r)
	return fixture{router: r, chatSvc: chatSvc, accountID: identity.ID}
}

func (f fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestListHealsEmptyCollection(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/conversations")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var entries []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one conversation, got %d", len(entries))
	}
	if !entries[0].Active || entries[0].Title != chatmodel.DefaultTitle {
		t.Fatalf("expected active %q conversation, got %+v", chatmodel.DefaultTitle, entries[0])
	}
}

func TestCreatePrependsAndActivates(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/conversations")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var conv chatmodel.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	items, activeID, err := f.chatSvc.List(f.accountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) == 0 || items[0].ID != conv.ID {
		t.Fatalf("expected new conversation first in list")
	}
	if activeID != conv.ID {
		t.Fatalf("expected new conversation active, got %q", activeID)
	}
}

func TestGetUnknownConversation(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/conversations/no-such-id")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetHTMLRendersModelTurns(t *testing.T) {
	f := setup(t)

	conv, err := f.chatSvc.Ensure(f.accountID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := f.chatSvc.AppendTurn(f.accountID, conv.ID, chatservice.NewTurn(chatmodel.RoleUser, "hi")); err != nil {
		t.Fatalf("append user turn: %v", err)
	}
	if _, err := f.chatSvc.AppendTurn(f.accountID, conv.ID, chatservice.NewTurn(chatmodel.RoleModel, "**bold** reply")); err != nil {
		t.Fatalf("append model turn: %v", err)
	}

	resp := f.do(t, http.MethodGet, "/conversations/"+conv.ID+"?format=html")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Turns []struct {
			Role string `json:"role"`
			HTML string `json:"html"`
		} `json:"turns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(body.Turns))
	}
	if body.Turns[0].HTML != "" {
		t.Fatalf("user turn should not be rendered, got %q", body.Turns[0].HTML)
	}
	if !strings.Contains(body.Turns[1].HTML, "<strong>bold</strong>") {
		t.Fatalf("expected rendered markdown in model turn, got %q", body.Turns[1].HTML)
	}
}

func TestDeleteKeepsOneConversationAround(t *testing.T) {
	f := setup(t)

	conv, err := f.chatSvc.Ensure(f.accountID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	resp := f.do(t, http.MethodDelete, "/conversations/"+conv.ID)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	items, activeID, err := f.chatSvc.List(f.accountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || activeID == "" {
		t.Fatalf("expected a fresh active conversation after delete, got %d (active=%q)", len(items), activeID)
	}
	if items[0].ID == conv.ID {
		t.Fatalf("expected deleted conversation replaced, got the same id back")
	}
}

func TestSelectUnknownIsNoOp(t *testing.T) {
	f := setup(t)

	conv, err := f.chatSvc.Ensure(f.accountID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	resp := f.do(t, http.MethodPost, "/conversations/no-such-id/select")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	_, activeID, err := f.chatSvc.List(f.accountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if activeID != conv.ID {
		t.Fatalf("expected active conversation unchanged, got %q", activeID)
	}
}
