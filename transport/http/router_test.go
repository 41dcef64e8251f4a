package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tokenizer/adapters/tokenizer"
	"github.com/layer-3/tokenizer/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEncodedSecret = "a2V2aW4xMjM0MTIzNDEyMzQxMjM0MTIzNDEyMzQxMjM0"
	testAdminKey      = "admin-key"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(opts ...service.Option) *gin.Engine {
	svc := service.NewAuthService(tokenizer.NewHMACTokenizer(), testEncodedSecret, opts...)
	return SetupRouter(svc, testAdminKey, zap.NewNop())
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func issue(t *testing.T, router http.Handler, subject string) tokenResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/token",
		gin.H{"subject": subject, "claims": gin.H{"roles": []string{"USER"}}},
		map[string]string{HeaderAdminAPIKey: testAdminKey},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIssueAndMe(t *testing.T) {
	router := newTestRouter()
	pair := issue(t, router, "member-1")

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(service.DefaultAccessTTL.Seconds()), pair.ExpiresIn)

	w := doJSON(t, router, http.MethodGet, "/api/me", nil,
		map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Subject string         `json:"subject"`
		Claims  map[string]any `json:"claims"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "member-1", me.Subject)
	assert.Equal(t, []any{"USER"}, me.Claims["roles"])
}

func TestIssueRequiresAdminKey(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/auth/token", gin.H{"subject": "member-1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/token", gin.H{"subject": "member-1"},
		map[string]string{HeaderAdminAPIKey: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/token", gin.H{},
		map[string]string{HeaderAdminAPIKey: testAdminKey})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueDisabledWithoutAdminKey(t *testing.T) {
	svc := service.NewAuthService(tokenizer.NewHMACTokenizer(), testEncodedSecret)
	router := SetupRouter(svc, "", zap.NewNop())

	w := doJSON(t, router, http.MethodPost, "/auth/token", gin.H{"subject": "member-1"},
		map[string]string{HeaderAdminAPIKey: ""})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeRejectsBadTokens(t *testing.T) {
	router := newTestRouter()

	tk := tokenizer.NewHMACTokenizer()
	expired, err := tk.GenerateAccessToken(nil, "member-1", time.Now().Add(-time.Minute), testEncodedSecret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{name: "missing header", header: "", wantMsg: "Invalid authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantMsg: "Invalid authorization header"},
		{name: "garbage", header: "Bearer not.a.token", wantMsg: "Invalid token"},
		{name: "expired", header: "Bearer " + expired, wantMsg: "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}

			w := doJSON(t, router, http.MethodGet, "/api/me", nil, headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestRefresh(t *testing.T) {
	router := newTestRouter()
	pair := issue(t, router, "member-1")

	w := doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": pair.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)

	w = doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "not.a.token"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshExpired(t *testing.T) {
	router := newTestRouter()

	tk := tokenizer.NewHMACTokenizer()
	expired, err := tk.GenerateRefreshToken("member-1", time.Now().Add(-time.Second), testEncodedSecret)
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": expired}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Refresh token expired")
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
