package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/application/service"
	"github.com/sangkips/cashledger-api/internal/config"
	"github.com/sangkips/cashledger-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/cashledger-api/internal/presentation/http/handler"
	"github.com/sangkips/cashledger-api/pkg/utils"
)

type testEnv struct {
	router     *gin.Engine
	jwtManager *utils.JWTManager
	tenantID   uuid.UUID
	agentID    uuid.UUID
	managerID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	collectionService := service.NewCollectionService(store.Collections(), store.Sales())
	reportService := service.NewReportService(store.Collections(), store.Sales(), store.Reports())

	jwtManager := utils.NewJWTManager("test-secret", time.Hour)

	cfg := &config.Config{}
	cfg.App.Name = "cashledger-api"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.RateLimit.Requests = 1000
	cfg.RateLimit.Duration = 1

	router := Setup(&Handlers{
		Collection: handler.NewCollectionHandler(collectionService),
		Report:     handler.NewReportHandler(reportService),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: store.IdempotencyKeys(),
	})

	return &testEnv{
		router:     router,
		jwtManager: jwtManager,
		tenantID:   uuid.New(),
		agentID:    uuid.New(),
		managerID:  uuid.New(),
	}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID, roles ...string) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(userID, e.tenantID, roles)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/cash-collections", "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/cash-collections", "not-a-token", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", w.Code)
	}
}

func TestCollectionLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	agentToken := env.token(t, env.agentID, "agent")
	managerToken := env.token(t, env.managerID, "manager")

	// Open a collection
	w := env.do(t, http.MethodPost, "/api/v1/cash-collections", agentToken,
		map[string]interface{}{"opening_float": 50.00}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var collection struct {
		ID           uuid.UUID `json:"id"`
		ReferenceNo  string    `json:"reference_no"`
		OpeningFloat float64   `json:"opening_float"`
		ExpectedCash float64   `json:"expected_cash"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &collection); err != nil {
		t.Fatalf("decode collection: %v", err)
	}
	if collection.OpeningFloat != 50.00 || collection.ExpectedCash != 50.00 {
		t.Errorf("unexpected amounts: %+v", collection)
	}

	// Register a sale stub
	w = env.do(t, http.MethodPost, "/api/v1/sales", agentToken, map[string]interface{}{}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register sale: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var sale struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &sale); err != nil {
		t.Fatalf("decode sale: %v", err)
	}

	collectionPath := "/api/v1/cash-collections/" + collection.ID.String()

	// Post the sale's cash
	w = env.do(t, http.MethodPost, collectionPath+"/sales", agentToken, map[string]interface{}{
		"sale_id":       sale.ID,
		"cash_received": 12.00,
		"change_given":  2.00,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("post sale: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Post an expense
	w = env.do(t, http.MethodPost, collectionPath+"/expenses", agentToken, map[string]interface{}{
		"type":   "fuel",
		"amount": 2.00,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("post expense: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Read it back
	w = env.do(t, http.MethodGet, collectionPath, agentToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var detail struct {
		ExpectedCash float64 `json:"expected_cash"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.ExpectedCash != 58.00 {
		t.Errorf("expected cash 58.00, got %.2f", detail.ExpectedCash)
	}

	// Submit with the counted cash
	w = env.do(t, http.MethodPost, collectionPath+"/submit", agentToken, map[string]interface{}{
		"denominations": []map[string]interface{}{
			{"denomination": 10.00, "quantity": 5, "total": 50.00},
			{"denomination": 1.00, "quantity": 8, "total": 8.00},
		},
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var submitResult struct {
		Variance float64 `json:"variance"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &submitResult); err != nil {
		t.Fatalf("decode submit result: %v", err)
	}
	if submitResult.Variance != 0 {
		t.Errorf("expected zero variance, got %.2f", submitResult.Variance)
	}

	// The pending queue is manager-only
	w = env.do(t, http.MethodGet, "/api/v1/cash-collections/pending", agentToken, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("pending as agent: expected 403, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/v1/cash-collections/pending", managerToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pending as manager: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Approval is manager-only
	w = env.do(t, http.MethodPost, collectionPath+"/approve", agentToken, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("approve as agent: expected 403, got %d", w.Code)
	}
	w = env.do(t, http.MethodPost, collectionPath+"/approve", managerToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve as manager: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Postings after close are rejected
	w = env.do(t, http.MethodPost, collectionPath+"/expenses", agentToken, map[string]interface{}{
		"type":   "fuel",
		"amount": 1.00,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("post after close: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Summary reflects the approved collection
	w = env.do(t, http.MethodGet, "/api/v1/cash-collections/summary", managerToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary struct {
		TotalCollections int64 `json:"total_collections"`
		ApprovedCount    int64 `json:"approved_count"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalCollections != 1 || summary.ApprovedCount != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestIdempotentExpensePosting(t *testing.T) {
	env := newTestEnv(t)
	agentToken := env.token(t, env.agentID, "agent")

	w := env.do(t, http.MethodPost, "/api/v1/cash-collections", agentToken,
		map[string]interface{}{"opening_float": 10.00}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", w.Code)
	}
	var collection struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &collection); err != nil {
		t.Fatalf("decode collection: %v", err)
	}

	path := "/api/v1/cash-collections/" + collection.ID.String() + "/expenses"
	body := map[string]interface{}{"type": "fuel", "amount": 2.00}
	headers := map[string]string{"Idempotency-Key": "expense-retry-1"}

	first := env.do(t, http.MethodPost, path, agentToken, body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("first post: expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := env.do(t, http.MethodPost, path, agentToken, body, headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d: %s", second.Code, second.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("expected replay marker header")
	}
	if first.Body.String() != second.Body.String() {
		t.Error("expected identical replayed body")
	}

	// The ledger moved once, not twice
	w = env.do(t, http.MethodGet, "/api/v1/cash-collections/"+collection.ID.String(), agentToken, nil, nil)
	var detail struct {
		Expenses float64 `json:"expenses"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Expenses != 2.00 {
		t.Errorf("expected expenses 2.00 after replay, got %.2f", detail.Expenses)
	}
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	agentToken := env.token(t, env.agentID, "agent")

	// Missing opening float
	w := env.do(t, http.MethodPost, "/api/v1/cash-collections", agentToken,
		map[string]interface{}{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing opening float, got %d", w.Code)
	}

	// Malformed collection ID
	w = env.do(t, http.MethodPost, "/api/v1/cash-collections/not-a-uuid/expenses", agentToken,
		map[string]interface{}{"type": "fuel", "amount": 1.00}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad ID, got %d", w.Code)
	}

	// Unknown collection
	w = env.do(t, http.MethodPost, "/api/v1/cash-collections/"+uuid.NewString()+"/expenses", agentToken,
		map[string]interface{}{"type": "fuel", "amount": 1.00}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown collection, got %d", w.Code)
	}
}

func TestSecondOpenCollectionConflictOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	agentToken := env.token(t, env.agentID, "agent")

	w := env.do(t, http.MethodPost, "/api/v1/cash-collections", agentToken,
		map[string]interface{}{"opening_float": 10.00}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("first open: expected 201, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/cash-collections", agentToken,
		map[string]interface{}{"opening_float": 10.00}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second open: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}
