package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	// a unique seed email guarantees a freshly created pengurus with a known password
	_ = os.Setenv("SEED_ADMIN_EMAIL", fmt.Sprintf("pengurus+%d@test.local", time.Now().UnixNano()))
	_ = os.Setenv("SEED_ADMIN_PASSWORD", "pengurus-test-pw")
	_ = os.Setenv("UPLOAD_BASE", t.TempDir())
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": email, "password": password,
	}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s failed status=%d body=%s", email, resp.Code, resp.Body.String())
	}
	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response")
	}
	return token
}

func TestLoanRepaymentFlow(t *testing.T) {
	r := setupTestServer(t)
	adminToken := loginAs(t, r, os.Getenv("SEED_ADMIN_EMAIL"), "pengurus-test-pw")

	// create a member via the privileged insert
	suffix := time.Now().UnixNano()
	resp := performRequest(r, http.MethodPost, "/users", jsonBody(t, map[string]any{
		"full_name": "Anggota Uji",
		"phone":     fmt.Sprintf("08%d", suffix),
		"role":      "anggota",
	}), adminToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("admin create user failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	userObj, _ := decodeBody(t, resp)["user"].(map[string]any)
	memberID, _ := userObj["id"].(string)
	if memberID == "" {
		t.Fatalf("missing member id in response")
	}

	// pengurus role requires an email; must be rejected before any write
	resp = performRequest(r, http.MethodPost, "/users", jsonBody(t, map[string]any{
		"full_name": "Pengurus Tanpa Email",
		"phone":     fmt.Sprintf("08x%d", suffix),
		"role":      "pengurus",
	}), adminToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pengurus without email, got %d", resp.Code)
	}

	// open a loan: 500,000/month for 12 months (expected total 6,000,000)
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"user_id":         memberID,
		"amount":          "6000000",
		"monthly_payment": "500000",
		"duration_months": 12,
	}), adminToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create loan failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loanID, _ := decodeBody(t, resp)["id"].(string)
	if loanID == "" {
		t.Fatalf("missing loan id in response")
	}

	// 11 monthly installments: loan must stay active
	for i := 0; i < 11; i++ {
		resp = performRequest(r, http.MethodPost, "/payments", jsonBody(t, map[string]any{
			"user_id":      memberID,
			"loan_id":      loanID,
			"payment_type": "monthly",
			"payment_date": fmt.Sprintf("2025-%02d-10", i+1),
		}), adminToken)
		if resp.Code != http.StatusCreated {
			t.Fatalf("payment %d failed status=%d body=%s", i+1, resp.Code, resp.Body.String())
		}
		if paid, _ := decodeBody(t, resp)["loan_paid"].(bool); paid {
			t.Fatalf("loan settled after %d payments, expected 12", i+1)
		}
	}

	// the 12th installment reaches exactly 6,000,000 and settles the loan
	resp = performRequest(r, http.MethodPost, "/payments", jsonBody(t, map[string]any{
		"user_id":      memberID,
		"loan_id":      loanID,
		"payment_type": "monthly",
		"payment_date": "2025-12-10",
	}), adminToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("final payment failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	if paid, _ := decodeBody(t, resp)["loan_paid"].(bool); !paid {
		t.Fatalf("loan not settled at expected total, body=%s", resp.Body.String())
	}

	// the loan view now shows paid with zero remaining
	resp = performRequest(r, http.MethodGet, "/loans/"+loanID, nil, adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("get loan failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loanBody := decodeBody(t, resp)
	if status, _ := loanBody["status"].(string); status != "paid" {
		t.Fatalf("expected paid loan, got %v", loanBody["status"])
	}

	// a further payment against the paid loan is refused
	resp = performRequest(r, http.MethodPost, "/payments", jsonBody(t, map[string]any{
		"user_id":      memberID,
		"loan_id":      loanID,
		"payment_type": "partial",
		"amount":       "1000",
		"payment_date": "2025-12-11",
	}), adminToken)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for payment on paid loan, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestContributionAndDashboardFlow(t *testing.T) {
	r := setupTestServer(t)
	adminToken := loginAs(t, r, os.Getenv("SEED_ADMIN_EMAIL"), "pengurus-test-pw")

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("anggota+%d@test.local", suffix)
	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{
		"email":     email,
		"password":  "rahasia1",
		"full_name": "Anggota Infaq",
		"phone":     fmt.Sprintf("08i%d", suffix),
	}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	memberID, _ := decodeBody(t, resp)["id"].(string)
	memberToken := loginAs(t, r, email, "rahasia1")

	// an infaq contribution inside the selected period
	resp = performRequest(r, http.MethodPost, "/payments", jsonBody(t, map[string]any{
		"user_id":          memberID,
		"payment_category": "infaq",
		"amount":           "75000",
		"payment_date":     "2025-03-31",
	}), memberToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("infaq payment failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// category and loan are mutually exclusive
	resp = performRequest(r, http.MethodPost, "/payments", jsonBody(t, map[string]any{
		"user_id":          memberID,
		"payment_category": "infaq",
		"payment_type":     "monthly",
		"amount":           "75000",
		"payment_date":     "2025-03-31",
	}), memberToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for category+type, got %d", resp.Code)
	}

	// dashboard for the period includes the contribution
	resp = performRequest(r, http.MethodGet, "/dashboard?year=2025&month=3", nil, memberToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// pengurus notes about the member
	resp = performRequest(r, http.MethodPost, "/users/"+memberID+"/notes", jsonBody(t, map[string]any{
		"notes": "rencana pinjaman renovasi",
		"date":  "2025-03-15",
	}), adminToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create note failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/users/"+memberID+"/notes", nil, adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("list notes failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// anggota cannot use pengurus-only routes
	resp = performRequest(r, http.MethodPost, "/loans", jsonBody(t, map[string]any{
		"user_id":         memberID,
		"amount":          "1000000",
		"monthly_payment": "100000",
		"duration_months": 10,
	}), memberToken)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for anggota creating loan, got %d", resp.Code)
	}

	// unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/payments", nil, "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list payments got %d", unauth.Code)
	}
}
