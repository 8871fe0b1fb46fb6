package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cardsense/cardsense/internal/apperrors"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// newRawServer answers every request with status and the literal body
func newRawServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	return srv.URL + "/api"
}

const transactionJSON = `{"id":1,"merchant":"Amazon","amount":"48.59","category":"ONLINE_SHOPPING",` +
	`"card_actually_used":3,"recommended_card":3,"notes":null,"actual_reward":"0.97",` +
	`"optimal_reward":"0.97","missed_reward":"0.00","used_optimal_card":true,"created_at":"2025-12-18T10:00:00Z"}`

func TestGetTransactions_AcceptsEveryListShape(t *testing.T) {
	bodies := map[string]string{
		"success envelope": `{"success":true,"data":[` + transactionJSON + `]}`,
		"bare array":       `[` + transactionJSON + `]`,
		"data only":        `{"data":[` + transactionJSON + `]}`,
	}

	var first []Transaction
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, newRawServer(t, http.StatusOK, body))
			res := c.GetTransactions(context.Background())
			if !res.Success {
				t.Fatalf("unexpected failure: %v", res.Error)
			}
			if res.Error != nil {
				t.Error("successful response carries an error")
			}
			if len(res.Data) != 1 {
				t.Fatalf("got %d transactions, want 1", len(res.Data))
			}
			tx := res.Data[0]
			if !tx.Amount.Equal(mustDecimal(t, "48.59")) || tx.Category != "ONLINE_SHOPPING" {
				t.Errorf("got %+v", tx)
			}
			if tx.CardActuallyUsed == nil || *tx.CardActuallyUsed != 3 {
				t.Errorf("card_actually_used = %v, want 3", tx.CardActuallyUsed)
			}
			if first == nil {
				first = res.Data
			} else if !reflect.DeepEqual(first, res.Data) {
				t.Errorf("shape %s normalized differently:\n%+v\n%+v", name, res.Data, first)
			}
		})
	}
}

func TestGetTransactions_EmptyList(t *testing.T) {
	c := newTestClient(t, newRawServer(t, http.StatusOK, `{"success":true,"data":[]}`))
	res := c.GetTransactions(context.Background())
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Error)
	}
	if res.Data == nil || len(res.Data) != 0 {
		t.Errorf("got %#v, want an empty non-nil slice", res.Data)
	}
}

func TestGetTransactions_RejectsUnknownShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object data", `{"success":true,"data":{"id":1}}`},
		{"results wrapper", `{"count":1,"results":[]}`},
		{"string", `"ok"`},
		{"empty body", ``},
		{"html", `<html><body>Server Error</body></html>`},
		{"wrong element type", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newRawServer(t, http.StatusOK, tt.body))
			res := c.GetTransactions(context.Background())
			if res.Success {
				t.Fatalf("accepted %s", tt.body)
			}
			if res.Error.Code != apperrors.ErrCodeInvalidResponse || res.Error.Message != invalidResponseMessage {
				t.Errorf("got %s %q, want INVALID_RESPONSE", res.Error.Code, res.Error.Message)
			}
		})
	}
}

func TestErrorFromResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    apperrors.ErrorCode
		wantMessage string
	}{
		{"error message", 400, `{"error":{"message":"Amount is invalid","details":{"amount":["x"]}}}`, apperrors.ErrCodeValidationError, "Amount is invalid"},
		{"error string", 400, `{"error":"Card already added"}`, apperrors.ErrCodeValidationError, "Card already added"},
		{"detail", 401, `{"detail":"Authentication credentials were not provided."}`, apperrors.ErrCodeUnauthorized, "Authentication credentials were not provided."},
		{"message", 400, `{"success":false,"message":"Nope"}`, apperrors.ErrCodeValidationError, "Nope"},
		{"detail before message", 404, `{"message":"second","detail":"first"}`, apperrors.ErrCodeNotFound, "first"},
		{"first field error", 400, `{"year_month":["Enter a valid month."],"amount":["Must be positive."]}`, apperrors.ErrCodeValidationError, "Enter a valid month."},
		{"field order follows document", 400, `{"amount":["Must be positive."],"year_month":["Enter a valid month."]}`, apperrors.ErrCodeValidationError, "Must be positive."},
		{"error details field", 400, `{"error":{"code":"VALIDATION_ERROR","details":{"card":["Invalid pk \"99\"."]}}}`, apperrors.ErrCodeValidationError, `Invalid pk "99".`},
		{"nested field error", 400, `{"card":{"id":["This field is required."]}}`, apperrors.ErrCodeValidationError, "This field is required."},
		{"non field errors", 400, `{"non_field_errors":["Budget for this month already exists."]}`, apperrors.ErrCodeValidationError, "Budget for this month already exists."},
		{"empty body", 404, ``, apperrors.ErrCodeNotFound, "Failed to delete budget (404)"},
		{"html body", 500, `<h1>Server Error (500)</h1>`, apperrors.ErrCodeAPIError, "Failed to delete budget (500)"},
		{"csrf", 403, `{"detail":"CSRF Failed: CSRF token missing."}`, apperrors.ErrCodeCSRFError, csrfExpiredMessage},
		{"plain forbidden", 403, `{"detail":"You do not have permission to perform this action."}`, apperrors.ErrCodeForbidden, "You do not have permission to perform this action."},
		{"conflict", 409, `{"detail":"Conflict"}`, apperrors.ErrCodeAPIError, "Conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorFromResponse(&RawResponse{StatusCode: tt.status, Body: []byte(tt.body)}, "delete budget")
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", got.StatusCode, tt.status)
			}
		})
	}
}

func TestErrorFromResponse_Details(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{"error details", `{"error":{"message":"bad","details":{"amount":["x"]}}}`, map[string]any{"amount": []any{"x"}}},
		{"error object", `{"error":{"message":"bad"}}`, map[string]any{"message": "bad"}},
		{"whole body", `{"year_month":["bad"]}`, map[string]any{"year_month": []any{"bad"}}},
		{"no body", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorFromResponse(&RawResponse{StatusCode: 400, Body: []byte(tt.body)}, "create budget")
			if !reflect.DeepEqual(got.Details, tt.want) {
				t.Errorf("details = %#v, want %#v", got.Details, tt.want)
			}
		})
	}
}

func TestDeleteBudget_NotFound(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestClient(t, backend.apiURL())

	res := c.DeleteBudget(context.Background(), "2025-12")
	if res.Success {
		t.Fatal("deleting a missing budget succeeded")
	}
	if res.Error.Code != apperrors.ErrCodeNotFound {
		t.Errorf("got code %s, want %s", res.Error.Code, apperrors.ErrCodeNotFound)
	}
	calls := backend.callsTo(http.MethodDelete, "/api/budgets/")
	if len(calls) != 1 {
		t.Errorf("got %d delete calls, want 1", len(calls))
	}
}

func TestBudgets_CreateListDelete(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestClient(t, backend.apiURL())
	ctx := context.Background()
	login(t, c)

	created := c.CreateBudget(ctx, CreateBudgetRequest{Amount: mustDecimal(t, "500"), YearMonth: "2025-12"})
	if !created.Success {
		t.Fatalf("create failed: %v", created.Error)
	}
	if created.Data == nil {
		t.Fatal("created budget missing from response")
	}
	if created.Data.YearMonth != "2025-12" || !created.Data.Amount.Equal(mustDecimal(t, "500")) {
		t.Errorf("got %+v", created.Data)
	}

	list := c.GetBudgets(ctx)
	if !list.Success || len(list.Data) != 1 {
		t.Fatalf("got %+v, want one budget", list)
	}

	deleted := c.DeleteBudget(ctx, "2025-12")
	if !deleted.Success {
		t.Fatalf("delete failed: %v", deleted.Error)
	}
	if deleted.Message != "Budget deleted successfully" {
		t.Errorf("got message %q", deleted.Message)
	}
}

func TestCreateBudget_ValidationError(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestClient(t, backend.apiURL())

	res := c.CreateBudget(context.Background(), CreateBudgetRequest{Amount: decimal.NewFromInt(-5), YearMonth: "2025-13"})
	if res.Success {
		t.Fatal("invalid budget accepted")
	}
	if res.Error.Code != apperrors.ErrCodeValidationError {
		t.Errorf("got code %s, want %s", res.Error.Code, apperrors.ErrCodeValidationError)
	}
	if res.Error.Message == "" {
		t.Error("validation error has no message")
	}
	details, ok := res.Error.Details.(map[string]any)
	if !ok || details["year_month"] == nil {
		t.Errorf("details = %#v, want the field errors", res.Error.Details)
	}
}

func TestDelete_StatusGovernsSuccess(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{"no content", http.StatusNoContent, ``, true, "Transaction deleted successfully"},
		{"html body", http.StatusOK, `<p>deleted</p>`, true, "Transaction deleted successfully"},
		{"json message", http.StatusOK, `{"success":true,"message":"Gone","data":{"id":3}}`, true, "Gone"},
		{"server error", http.StatusInternalServerError, ``, false, "Failed to delete transaction (500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newRawServer(t, tt.status, tt.body))
			c.Session().SetToken("tok")
			res := c.DeleteTransaction(context.Background(), 3)
			if res.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v (%+v)", res.Success, tt.wantSuccess, res.Error)
			}
			msg := res.Message
			if !res.Success {
				msg = res.Error.Message
			}
			if msg != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg, tt.wantMessage)
			}
		})
	}
}

func TestGetTransaction_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
	}{
		{"envelope", `{"success":true,"data":` + transactionJSON + `}`, true},
		{"data only", `{"data":` + transactionJSON + `}`, true},
		{"bare record", transactionJSON, true},
		{"bare object without id", `{"merchant":"Amazon"}`, false},
		{"envelope without data", `{"success":true,"id":1,"merchant":"Amazon"}`, false},
		{"array", `[` + transactionJSON + `]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newRawServer(t, http.StatusOK, tt.body))
			res := c.GetTransaction(context.Background(), 1)
			if res.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v", res.Success, tt.wantSuccess)
			}
			if tt.wantSuccess && res.Data.Merchant != "Amazon" {
				t.Errorf("got %+v", res.Data)
			}
			if !tt.wantSuccess && res.Error.Code != apperrors.ErrCodeInvalidResponse {
				t.Errorf("got code %s, want INVALID_RESPONSE", res.Error.Code)
			}
		})
	}
}

func TestCreateTransaction_RejectsBareObject(t *testing.T) {
	c := newTestClient(t, newRawServer(t, http.StatusCreated, transactionJSON))
	c.Session().SetToken("tok")
	res := c.CreateTransaction(context.Background(), CreateTransactionRequest{Merchant: "Amazon", Amount: mustDecimal(t, "48.59"), Category: "ONLINE_SHOPPING"})
	if res.Success || res.Error.Code != apperrors.ErrCodeInvalidResponse {
		t.Errorf("got %+v, want INVALID_RESPONSE", res)
	}
}

func TestCreateTransaction_RequestBody(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": 9, "merchant": "Cafe"}})
	})
	c := newTestClient(t, srv.URL+"/api")
	c.Session().SetToken("tok")

	blank := "  "
	res := c.CreateTransaction(context.Background(), CreateTransactionRequest{
		Merchant: "Cafe",
		Amount:   mustDecimal(t, "12.5"),
		Category: "DINING",
		Notes:    &blank,
	})
	if !res.Success || res.Data.ID != 9 {
		t.Fatalf("got %+v", res)
	}

	body := <-received
	if body["notes"] != nil || body["card_actually_used"] != nil {
		t.Errorf("blank notes and unknown card should be sent as null: %v", body)
	}
	if _, ok := body["notes"]; !ok {
		t.Error("notes key missing from request body")
	}
	if body["amount"] != "12.5" || body["category"] != "DINING" {
		t.Errorf("got body %v", body)
	}
}

func TestAddUserCard(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		writeJSON(w, http.StatusCreated, map[string]any{"id": 12, "card": 3, "card_name": "Sapphire Preferred", "is_active": true})
	})
	c := newTestClient(t, srv.URL+"/api")
	c.Session().SetToken("tok")

	res := c.AddUserCard(context.Background(), 3)
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Error)
	}
	if res.Data == nil {
		t.Fatal("user card missing from response")
	}
	if res.Data.ID != 12 || res.Data.CatalogueID() != 3 || !res.Data.IsActive {
		t.Errorf("got %+v", res.Data)
	}

	body := <-received
	if body["card"] != float64(3) || body["is_active"] != true {
		t.Errorf("got request body %v, want card 3 and is_active true", body)
	}
}

func TestDecodeAuth(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"envelope", `{"success":true,"data":{"user":{"id":42,"email":"jane@example.com"}}}`, true},
		{"user wrapper", `{"user":{"id":42,"email":"jane@example.com"}}`, true},
		{"bare user", `{"id":42,"email":"jane@example.com"}`, true},
		{"envelope with user as data", `{"success":true,"data":{"id":42,"email":"jane@example.com"}}`, true},
		{"envelope without user", `{"success":true,"message":"Logged in"}`, false},
		{"envelope with null data", `{"success":true,"data":null}`, false},
		{"empty body", ``, false},
		{"array", `[]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := decodeAuth(&RawResponse{StatusCode: 200, Body: []byte(tt.body)})
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got.User.ID != 42 || got.User.Email != "jane@example.com") {
				t.Errorf("got %+v", got.User)
			}
		})
	}
}

func TestCreateEndpoints_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantRecord  bool
		wantMessage string
	}{
		{"envelope with record", `{"success":true,"data":{"id":5,"year_month":"2025-12","amount":"500.00","card":3,"is_active":true},"message":"Saved"}`, true, true, "Saved"},
		{"envelope without data", `{"success":true,"message":"Saved"}`, true, false, "Saved"},
		{"envelope with null data", `{"success":true,"data":null}`, true, false, ""},
		{"bare record", `{"id":5,"year_month":"2025-12","amount":"500.00","card":3,"is_active":true}`, true, true, ""},
		{"array", `[]`, false, false, ""},
		{"empty body", ``, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newRawServer(t, http.StatusCreated, tt.body))
			c.Session().SetToken("tok")

			budget := c.CreateBudget(context.Background(), CreateBudgetRequest{Amount: mustDecimal(t, "500"), YearMonth: "2025-12"})
			card := c.AddUserCard(context.Background(), 3)

			for name, got := range map[string]struct {
				success   bool
				hasRecord bool
				message   string
			}{
				"CreateBudget": {budget.Success, budget.Data != nil, budget.Message},
				"AddUserCard":  {card.Success, card.Data != nil, card.Message},
			} {
				if got.success != tt.wantSuccess {
					t.Fatalf("%s: success = %v, want %v", name, got.success, tt.wantSuccess)
				}
				if got.hasRecord != tt.wantRecord {
					t.Errorf("%s: record present = %v, want %v", name, got.hasRecord, tt.wantRecord)
				}
				if got.message != tt.wantMessage {
					t.Errorf("%s: message = %q, want %q", name, got.message, tt.wantMessage)
				}
			}
			if tt.wantRecord && (budget.Data.ID != 5 || budget.Data.YearMonth != "2025-12" || card.Data.CatalogueID() != 3) {
				t.Errorf("got budget %+v, card %+v", budget.Data, card.Data)
			}
		})
	}
}

func TestGetCardRecommendation(t *testing.T) {
	body := `{"success":true,"data":{"category":"DINING","amount":60,"recommendation":{` +
		`"best_card":{"card_id":3,"card_name":"Gold","multiplier":4},"multiplier":4,"rationale":"4x on dining",` +
		`"top3":[{"card_id":3,"card_name":"Gold","multiplier":4},{"card_id":5,"card_name":"Freedom","multiplier":3}]}}}`
	c := newTestClient(t, newRawServer(t, http.StatusOK, body))
	c.Session().SetToken("tok")

	res := c.GetCardRecommendation(context.Background(), RecommendationRequest{Category: "DINING", Amount: decimal.NewFromInt(60)})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Error)
	}
	rec := res.Data.Recommendation
	if rec.BestCard == nil || rec.BestCard.CardName != "Gold" || len(rec.Top3) != 2 {
		t.Errorf("got %+v", rec)
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	okJSON, err := json.Marshal(succeed([]int{1}, ""))
	if err != nil {
		t.Fatal(err)
	}
	if string(okJSON) != `{"success":true,"data":[1]}` {
		t.Errorf("got %s", okJSON)
	}

	failJSON, err := json.Marshal(fail[[]int](&ErrorDetail{Code: apperrors.ErrCodeNotFound, Message: "Not found."}))
	if err != nil {
		t.Fatal(err)
	}
	if string(failJSON) != `{"success":false,"error":{"code":"NOT_FOUND","message":"Not found."}}` {
		t.Errorf("got %s", failJSON)
	}
}
