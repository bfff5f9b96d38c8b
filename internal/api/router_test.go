package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codecraftlabs/site-server/internal/auth"
	"github.com/codecraftlabs/site-server/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	srv        *httptest.Server
	token      string
	uploadsDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	a, err := auth.New("admin", "admin123", "test-secret", time.Hour)
	require.NoError(t, err)

	uploadsDir := t.TempDir()
	handler := NewRouter(Deps{
		Store:      fs,
		Auth:       a,
		Log:        zap.NewNop(),
		UploadsDir: uploadsDir,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	token, err := a.Login("admin", "admin123")
	require.NoError(t, err)

	return &testServer{srv: srv, token: token, uploadsDir: uploadsDir}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	resp, env := ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "admin123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var data struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin", data.User.Username)
	assert.Equal(t, "admin", data.User.Role)

	resp, env = ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", env.Error)
}

func TestVerify(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/auth/verify", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := ts.do(t, http.MethodGet, "/api/auth/verify", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", env.Error)
}

func TestAdminRoutesRejectMissingToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/purchases", "/api/referrals", "/api/applications"} {
		resp, env := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Unauthorized", env.Error, path)
	}
}

func TestPurchaseFlow(t *testing.T) {
	ts := newTestServer(t)

	// Missing field rejected with the field name.
	resp, env := ts.do(t, http.MethodPost, "/api/purchases", "", map[string]interface{}{
		"txnId": "T1", "student": map[string]string{}, "items": []string{},
		"subtotal": 100, "taxes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing total", env.Error)

	purchase := map[string]interface{}{
		"txnId": "UPI-98765",
		"student": map[string]string{
			"firstName": "Asha", "lastName": "Rao", "email": "asha@example.com",
		},
		"items": []map[string]interface{}{
			{"title": "Line Follower Robot", "price": 2000, "quantity": 2, "certificate": "with"},
		},
		"subtotal": 4000,
		"taxes":    0,
		"total":    4000,
	}
	resp, env = ts.do(t, http.MethodPost, "/api/purchases", "", purchase)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var created struct {
		ID        string    `json:"id"`
		TxnID     string    `json:"txnId"`
		CreatedAt time.Time `json:"createdAt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "UPI-98765", created.TxnID)
	assert.False(t, created.CreatedAt.IsZero())

	resp, env = ts.do(t, http.MethodGet, "/api/purchases", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []struct {
		ID       string  `json:"id"`
		TxnID    string  `json:"txnId"`
		Subtotal float64 `json:"subtotal"`
		Total    float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, 4000.0, listed[0].Subtotal)
	assert.Equal(t, 4000.0, listed[0].Total)
}

func TestReferralFlow(t *testing.T) {
	ts := newTestServer(t)

	create := map[string]interface{}{
		"agentName": "Priya Sharma", "email": "priya@example.com",
		"code": "SAVE15", "discountPercent": 15,
	}
	resp, env := ts.do(t, http.MethodPost, "/api/referrals", ts.token, create)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	// Duplicate, case changed.
	dup := map[string]interface{}{
		"agentName": "Else", "email": "e@example.com", "code": "save15", "discountPercent": 10,
	}
	resp, env = ts.do(t, http.MethodPost, "/api/referrals", ts.token, dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Referral code already exists", env.Error)

	// Out-of-range percent.
	bad := map[string]interface{}{
		"agentName": "B", "email": "b@example.com", "code": "BAD", "discountPercent": 0,
	}
	resp, env = ts.do(t, http.MethodPost, "/api/referrals", ts.token, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "discountPercent must be 1-100", env.Error)

	// Public validation, any case, no token.
	resp, env = ts.do(t, http.MethodPost, "/api/referrals/validate", "", map[string]string{"code": "save15"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Valid           bool    `json:"valid"`
		DiscountPercent float64 `json:"discountPercent"`
		AgentName       string  `json:"agentName"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 15.0, result.DiscountPercent)
	assert.Equal(t, "Priya Sharma", result.AgentName)

	// Unknown code is a 200 with valid=false.
	resp, env = ts.do(t, http.MethodPost, "/api/referrals/validate", "", map[string]string{"code": "NOPE"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Valid)

	// Delete, case-insensitive, then deleting again is a 404.
	resp, _ = ts.do(t, http.MethodDelete, "/api/referrals/Save15", ts.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = ts.do(t, http.MethodDelete, "/api/referrals/Save15", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Referral not found", env.Error)

	// Deleted codes no longer validate.
	resp, env = ts.do(t, http.MethodPost, "/api/referrals/validate", "", map[string]string{"code": "SAVE15"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Valid)
}

func TestReferralCodesAlias(t *testing.T) {
	ts := newTestServer(t)

	create := map[string]interface{}{
		"agentName": "A", "email": "a@example.com", "code": "ALIAS10", "discountPercent": 10,
	}
	resp, _ := ts.do(t, http.MethodPost, "/api/referral-codes", ts.token, create)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := ts.do(t, http.MethodPost, "/api/referral-codes/validate", "", map[string]string{"code": "alias10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Valid)
}

func TestApplicationFlow(t *testing.T) {
	ts := newTestServer(t)

	// A purchase with the same email so the admin view can surface its txnId.
	purchase := map[string]interface{}{
		"txnId":   "UPI-55555",
		"student": map[string]string{"email": "kiran@example.com"},
		"items":   []map[string]interface{}{}, "subtotal": 0, "taxes": 0, "total": 0,
	}
	resp, _ := ts.do(t, http.MethodPost, "/api/purchases", "", purchase)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Kiran", "email": "kiran@example.com", "phone": "8888888888",
		"college": "NIT", "year": "3", "domain": "robotics",
		"project": "line-follower", "coverLetter": "hello",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("resume", "kiran resume.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake resume"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/applications", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&env))
	require.True(t, env.Success)

	var created struct {
		ID     string  `json:"id"`
		Resume *string `json:"resume"`
		Status string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	require.NotNil(t, created.Resume)
	assert.True(t, strings.HasPrefix(*created.Resume, "/uploads/"))

	// The file landed on disk and is served back.
	name := strings.TrimPrefix(*created.Resume, "/uploads/")
	_, err = os.Stat(filepath.Join(ts.uploadsDir, name))
	require.NoError(t, err)

	fileResp, err := http.Get(ts.srv.URL + *created.Resume)
	require.NoError(t, err)
	defer fileResp.Body.Close()
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)

	// Admin list joins the purchase txnId by email.
	resp, env = ts.do(t, http.MethodGet, "/api/applications", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		TxnID string `json:"txnId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "UPI-55555", listed[0].TxnID)
}

func TestApplicationMissingRequiredFields(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Kiran"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/applications", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Missing required fields", env.Error)
}

func TestValidateRequiresCode(t *testing.T) {
	ts := newTestServer(t)

	resp, env := ts.do(t, http.MethodPost, "/api/referrals/validate", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing code", env.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
