package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CaioWF/ignite-finapi/internal/auth"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/CaioWF/ignite-finapi/internal/models/events"
	"github.com/CaioWF/ignite-finapi/internal/statement"
	"github.com/CaioWF/ignite-finapi/internal/storage/memory"
	"github.com/CaioWF/ignite-finapi/internal/users"
	"github.com/shopspring/decimal"
)

// recordingPublisher collects every published event in order.
type recordingPublisher struct {
	events []events.EntryRecorded
}

func (p *recordingPublisher) Publish(ctx context.Context, event any) error {
	if e, ok := event.(events.EntryRecorded); ok {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testAPI struct {
	handler   http.Handler
	userStore *memory.UserStore
	published *recordingPublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	userStore := memory.NewUserStore()
	entryStore := memory.NewStatementStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userService := users.NewService(userStore, tokens, nil)
	engine := statement.NewEngine(userStore, entryStore, nil)

	published := &recordingPublisher{}
	srv := New(userService, engine, tokens, published, nil)
	return &testAPI{handler: srv.Router(), userStore: userStore, published: published}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signUp(t *testing.T, name, email string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name": name, "email": email, "password": "pw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rec.Code, rec.Body)
	}
}

func (a *testAPI) session(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{
		"email": email, "password": "pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("session status=%d body=%s", rec.Code, rec.Body)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatal(err)
	}
	if session.Token == "" {
		t.Fatal("session without token")
	}
	return session.Token
}

func decodeEntry(t *testing.T, body []byte) models.StatementEntry {
	t.Helper()
	var entry models.StatementEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		t.Fatalf("decoding entry: %v (%s)", err, body)
	}
	return entry
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return body.Message
}

func TestSignUpAndSession(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name": "other", "email": "alice@test.com", "password": "pw",
	})
	if rec.Code != http.StatusBadRequest || message(t, rec) != "User already exists" {
		t.Fatalf("duplicate signup status=%d body=%s", rec.Code, rec.Body)
	}

	token := api.session(t, "alice@test.com")

	rec = api.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status=%d body=%s", rec.Code, rec.Body)
	}
	var profile models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Email != "alice@test.com" {
		t.Fatalf("profile=%+v", profile)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("profile response leaks password field")
	}
}

func TestSessionBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{
		"email": "alice@test.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized || message(t, rec) != "Incorrect email or password" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestStatementsRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/statements/balance", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status=%d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/statements/balance", "bogus", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status=%d", rec.Code)
	}
}

func TestDepositWithdrawBalance(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 10.5, "description": "deposit",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit status=%d body=%s", rec.Code, rec.Body)
	}
	entry := decodeEntry(t, rec.Body.Bytes())
	if entry.Type != models.OperationDeposit || !entry.Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("deposit entry=%+v", entry)
	}
	// Non-transfer responses carry no sender marker at all.
	if strings.Contains(rec.Body.String(), "sender_id") {
		t.Fatalf("deposit response has sender_id: %s", rec.Body)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/statements/withdraw", token, map[string]any{
		"amount": 9.5, "description": "withdraw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdraw status=%d body=%s", rec.Code, rec.Body)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/statements/balance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance status=%d body=%s", rec.Code, rec.Body)
	}
	var balance struct {
		Balance   decimal.Decimal         `json:"balance"`
		Statement []models.StatementEntry `json:"statement"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatal(err)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("1")) || len(balance.Statement) != 2 {
		t.Fatalf("balance=%s entries=%d want 1/2", balance.Balance, len(balance.Statement))
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/statements/withdraw", token, map[string]any{
		"amount": 90.5, "description": "withdraw",
	})
	if rec.Code != http.StatusBadRequest || message(t, rec) != "Insufficient funds" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestTransfer(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	api.signUp(t, "bob", "bob@test.com")
	token := api.session(t, "alice@test.com")
	bobToken := api.session(t, "bob@test.com")

	api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 20.5, "description": "deposit",
	})

	var bob models.User
	rec := api.do(t, http.MethodGet, "/api/v1/profile", bobToken, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &bob); err != nil {
		t.Fatal(err)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/statements/transfer/"+bob.ID, token, map[string]any{
		"amount": 10.5, "description": "transfer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer status=%d body=%s", rec.Code, rec.Body)
	}
	entry := decodeEntry(t, rec.Body.Bytes())
	if entry.Type != models.OperationTransfer {
		t.Fatalf("entry=%+v", entry)
	}
	if entry.SenderID == nil || *entry.SenderID != entry.UserID {
		t.Fatalf("transfer response sender=%v user=%s", entry.SenderID, entry.UserID)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/statements/balance", bobToken, nil)
	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatal(err)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("receiver balance=%s want=10.5", balance.Balance)
	}
}

func TestTransferToSelf(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 10, "description": "deposit",
	})

	var alice models.User
	rec := api.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &alice); err != nil {
		t.Fatal(err)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/statements/transfer/"+alice.ID, token, map[string]any{
		"amount": 10, "description": "transfer",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self transfer status=%d body=%s", rec.Code, rec.Body)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/statements/balance", token, nil)
	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatal(err)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("balance=%s want=10", balance.Balance)
	}
}

// Each committed operation yields one event; a transfer publishes the
// sender's leg only.
func TestEntryEventsPublished(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	api.signUp(t, "bob", "bob@test.com")
	token := api.session(t, "alice@test.com")
	bobToken := api.session(t, "bob@test.com")

	api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 20, "description": "deposit",
	})

	var bob models.User
	rec := api.do(t, http.MethodGet, "/api/v1/profile", bobToken, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &bob); err != nil {
		t.Fatal(err)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/statements/transfer/"+bob.ID, token, map[string]any{
		"amount": 5, "description": "transfer",
	})
	entry := decodeEntry(t, rec.Body.Bytes())

	if len(api.published.events) != 2 {
		t.Fatalf("published %d events, want 2", len(api.published.events))
	}
	if api.published.events[0].Type != string(models.OperationDeposit) {
		t.Fatalf("first event=%+v want deposit", api.published.events[0])
	}
	got := api.published.events[1]
	if got.EntryID != entry.ID || got.UserID != entry.UserID {
		t.Fatalf("transfer event=%+v want entry %s of user %s", got, entry.ID, entry.UserID)
	}
	if got.SenderID == nil || *got.SenderID != entry.UserID {
		t.Fatalf("transfer event sender=%v want %s", got.SenderID, entry.UserID)
	}

	// A rejected operation publishes nothing.
	api.do(t, http.MethodPost, "/api/v1/statements/withdraw", token, map[string]any{
		"amount": 1000, "description": "withdraw",
	})
	if len(api.published.events) != 2 {
		t.Fatalf("rejected withdraw published an event: %d total", len(api.published.events))
	}
}

// Amounts and balances serialize as bare JSON numbers on every response.
func TestAmountsSerializeAsNumbers(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 10.5, "description": "deposit",
	})
	if !strings.Contains(rec.Body.String(), `"amount":10.5`) {
		t.Fatalf("deposit amount not a JSON number: %s", rec.Body)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/statements/balance", token, nil)
	if !strings.Contains(rec.Body.String(), `"balance":10.5`) {
		t.Fatalf("balance not a JSON number: %s", rec.Body)
	}
}

func TestTransferToUnknownUser(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 20, "description": "deposit",
	})

	rec := api.do(t, http.MethodPost, "/api/v1/statements/transfer/nonexistent", token, map[string]any{
		"amount": 10, "description": "transfer",
	})
	if rec.Code != http.StatusNotFound || message(t, rec) != "User not found" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestGetStatementEntry(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	api.signUp(t, "bob", "bob@test.com")
	token := api.session(t, "alice@test.com")
	bobToken := api.session(t, "bob@test.com")

	rec := api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 10.5, "description": "deposit",
	})
	entry := decodeEntry(t, rec.Body.Bytes())

	rec = api.do(t, http.MethodGet, "/api/v1/statements/"+entry.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get entry status=%d body=%s", rec.Code, rec.Body)
	}
	got := decodeEntry(t, rec.Body.Bytes())
	if got.ID != entry.ID {
		t.Fatalf("got=%s want=%s", got.ID, entry.ID)
	}

	// Another user's entry reads as missing, not forbidden.
	rec = api.do(t, http.MethodGet, "/api/v1/statements/"+entry.ID, bobToken, nil)
	if rec.Code != http.StatusNotFound || message(t, rec) != "Statement not found" {
		t.Fatalf("cross-user status=%d body=%s", rec.Code, rec.Body)
	}
}

// A valid token for a user that no longer exists must yield 404, not a crash
// or a stale success.
func TestDeletedUserWithValidToken(t *testing.T) {
	api := newTestAPI(t)
	api.signUp(t, "alice", "alice@test.com")
	token := api.session(t, "alice@test.com")

	rec := api.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatal(err)
	}
	api.userStore.Delete(context.Background(), user.ID)

	rec = api.do(t, http.MethodPost, "/api/v1/statements/deposit", token, map[string]any{
		"amount": 10.5, "description": "deposit",
	})
	if rec.Code != http.StatusNotFound || message(t, rec) != "User not found" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}
