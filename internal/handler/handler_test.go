package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mail_admin/internal/mailer"
	"mail_admin/internal/mailer/mailertest"
	"mail_admin/internal/metrics"
	"mail_admin/internal/middleware"
	"mail_admin/internal/model"
	"mail_admin/internal/repository/repotest"
	"mail_admin/internal/service"
	"mail_admin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret-pass"

type testApp struct {
	router  *gin.Engine
	jwtUtil *utils.JWTUtil
	users   *repotest.UserRepository
	history *repotest.HistoryRepository
	mail    *mailertest.Recorder
	clock   time.Time
}

func (a *testApp) now() time.Time { return a.clock }

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	app := &testApp{
		users: repotest.NewUserRepository(
			model.User{ID: 1, Name: "Root Admin", Email: "admin@rezillion.energy", PasswordHash: hash, Role: model.RoleAdmin},
			model.User{ID: 2, Name: "Ivan Installer", Email: "ivan@solar.io", PasswordHash: hash, Role: model.RoleInstaller},
		),
		history: repotest.NewHistoryRepository(),
		mail:    &mailertest.Recorder{},
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	app.jwtUtil = utils.NewJWTUtil("handler-secret", 24).WithClock(app.now)

	log := zerolog.Nop()
	m := metrics.New()
	authHandler := NewAuthHandler(service.NewAuthService(app.users, app.jwtUtil, m, log), app.jwtUtil, false, log)
	dataHandler := NewDataHandler(service.NewListingService(app.users, app.history), log)
	mailHandler := NewMailHandler(service.NewMailService(app.users, app.history, app.mail, m, false, log), log)

	r := gin.New()
	api := r.Group("/api")
	authMW := middleware.SessionAuthMiddleware(app.jwtUtil)
	adminMW := middleware.AdminMiddleware()
	authHandler.RegisterAuthRoutes(api)
	dataHandler.RegisterDataRoutes(api, authMW, adminMW)
	mailHandler.RegisterMailRoutes(api, authMW, adminMW)
	RegisterMetricsRoute(r, m.Handler(), authMW, adminMW)
	app.router = r
	return app
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "admin@rezillion.energy", Password: testPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec).Value
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestLogin_AdminSucceeds(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "Admin@Rezillion.energy", Password: testPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"role":"admin","message":"Admin authenticated successfully"}`, rec.Body.String())

	c := sessionCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.Secure)
}

func TestLogin_InstallerIsForbidden(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "ivan@solar.io", Password: testPassword}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied. Administrator privileges required."}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	app := newTestApp(t)

	unknown := app.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "ghost@x.io", Password: testPassword}, "")
	wrong := app.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "admin@rezillion.energy", Password: "bad"}, "")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrong.Body.String())
}

func TestLogin_BadRequests(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []any{model.LoginRequest{Email: "admin@rezillion.energy"}, `{"email":`, nil} {
		rec := app.do(http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Email and password are required"}`, rec.Body.String())
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	app := newTestApp(t)
	app.users.Err = errors.New("connection reset")

	rec := app.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "admin@rezillion.energy", Password: testPassword}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestMe(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"authenticated":false,"message":"No session found"}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/auth/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"authenticated":false,"message":"Invalid or expired token"}`, rec.Body.String())

	token := app.login(t)
	rec = app.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":true,"user":{"id":1,"name":"Root Admin","role":"admin","email":"admin@rezillion.energy"}}`, rec.Body.String())
}

func TestMe_TokenLifetime(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)
	issued := app.clock

	app.clock = issued.Add(24*time.Hour - time.Second)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/auth/me", nil, token).Code)

	app.clock = issued.Add(24 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/auth/me", nil, token).Code)
}

func TestLogout_TokenReplayStillAccepted(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	rec := app.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	rec = app.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodGet, "/api/get-data?type=user", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type listingResponse struct {
	Items []map[string]any  `json:"items"`
	Meta  model.ListingMeta `json:"meta"`
}

func decodeListing(t *testing.T, rec *httptest.ResponseRecorder) listingResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp listingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetData_SearchAndPaging(t *testing.T) {
	app := newTestApp(t)
	for _, name := range []string{"Anna Smith", "Ben Smithers", "Carl Jones", "Dana Blacksmith", "Eve Stone", "Fay Smith", "Gus Smith", "Hal Smith", "Ida Smith"} {
		app.users.Add(model.User{Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@x.io", Role: model.RoleUser})
	}
	app.users.Add(model.User{Name: "Banned Smith", Email: "banned@x.io", Role: model.RoleUser, IsBanned: true})
	app.users.Add(model.User{Name: "Max Smith", Email: "max@x.io", Role: model.RoleInstaller})
	token := app.login(t)

	first := decodeListing(t, app.do(http.MethodGet, "/api/get-data?type=user&search=smith&page=1", nil, token))
	assert.Len(t, first.Items, 6)
	assert.Equal(t, int64(7), first.Meta.TotalCount)
	assert.Equal(t, int64(2), first.Meta.TotalPages)
	assert.Equal(t, 1, first.Meta.CurrentPage)
	for _, item := range first.Items {
		assert.Equal(t, "user", item["role"])
		assert.Contains(t, strings.ToLower(item["name"].(string)+item["email"].(string)), "smith")
		assert.NotContains(t, item, "password")
	}

	beyond := decodeListing(t, app.do(http.MethodGet, "/api/get-data?type=user&search=smith&page=5", nil, token))
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(2), beyond.Meta.TotalPages)
	assert.Equal(t, 5, beyond.Meta.CurrentPage)

	clamped := decodeListing(t, app.do(http.MethodGet, "/api/get-data?type=user&page=-2", nil, token))
	assert.Equal(t, 1, clamped.Meta.CurrentPage)

	installers := decodeListing(t, app.do(http.MethodGet, "/api/get-data?type=installer&search=smith", nil, token))
	assert.Equal(t, int64(1), installers.Meta.TotalCount)
}

func TestGetData_MaxIntPageIsEmpty(t *testing.T) {
	app := newTestApp(t)
	app.users.Add(model.User{Name: "Ina Installer", Email: "ina@solar.io", Role: model.RoleInstaller})
	token := app.login(t)

	rec := app.do(http.MethodGet, "/api/get-data?type=installer&page=9223372036854775807", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeListing(t, rec)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Equal(t, int64(2), resp.Meta.TotalCount)
	assert.Equal(t, int64(1), resp.Meta.TotalPages)
}

func TestGetData_EmptyItemsSerializeAsArray(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	rec := app.do(http.MethodGet, "/api/get-data?type=history", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"meta":{"totalCount":0,"totalPages":0,"currentPage":1}}`, rec.Body.String())
}

func TestGetData_Rejections(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t)
	installer, err := app.jwtUtil.GenerateToken(&model.User{ID: 2, Role: model.RoleInstaller})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantBody string
	}{
		{"no session", "/api/get-data?type=user", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"bad session", "/api/get-data?type=user", "x.y.z", http.StatusUnauthorized, `{"error":"Invalid or expired session"}`},
		{"non-admin", "/api/get-data?type=user", installer, http.StatusForbidden, `{"error":"Forbidden: Admins only"}`},
		{"unknown type", "/api/get-data?type=admin", admin, http.StatusBadRequest, `{"error":"Invalid type parameter"}`},
		{"missing type", "/api/get-data", admin, http.StatusBadRequest, `{"error":"Invalid type parameter"}`},
		{"non-numeric page", "/api/get-data?type=user&page=two", admin, http.StatusBadRequest, `{"error":"Invalid page parameter"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, nil, tt.token)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGetData_StoreFailure(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)
	app.history.Err = errors.New("relation does not exist")

	rec := app.do(http.MethodGet, "/api/get-data?type=history", nil, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch data"}`, rec.Body.String())
}

func TestSendMail_RecordsHistory(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	rec := app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{
		Email: "IVAN@solar.io", Name: "Ivan", TemplateName: mailer.TemplateInstallerWelcome, Role: model.RoleUser,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rows := app.history.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, model.RoleInstaller, rows[0].Role)
	assert.Equal(t, int64(1), *rows[0].AdminID)
	assert.False(t, rows[0].IsBulk)

	history := decodeListing(t, app.do(http.MethodGet, "/api/get-data?type=history&roleFilter=installer", nil, token))
	require.Len(t, history.Items, 1)
	assert.Equal(t, "IVAN@solar.io", history.Items[0]["recipient_email"])
}

func TestSendMail_Errors(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	rec := app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{Name: "Nobody"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Recipient email is required"}`, rec.Body.String())

	app.mail.Err = errors.New("smtp: 550 mailbox unavailable")
	rec = app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{Email: "jane@x.io"}, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to send email"}`, rec.Body.String())
	assert.Empty(t, app.history.Rows())

	rec = app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{Email: "jane@x.io"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportHistoryCSV(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{Email: "a@x.io", IsBulk: true}, token).Code)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/send-mail", model.SendMailRequest{Email: "b@x.io"}, token).Code)

	rec := app.do(http.MethodGet, "/api/history/export?roleFilter=bulk", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=email_history_export_")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,RecipientEmail,RecipientName,TemplateName,Status,Role,IsBulk,SentAt,AdminID", lines[0])
	assert.Contains(t, lines[1], "a@x.io")
}

func TestMetrics_AdminOnly(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	installer, err := app.jwtUtil.GenerateToken(&model.User{ID: 2, Role: model.RoleInstaller})
	require.NoError(t, err)
	rec = app.do(http.MethodGet, "/metrics", nil, installer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := app.login(t)
	rec = app.do(http.MethodGet, "/metrics", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `admin_login_attempts_total{outcome="success"} 1`)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := NewHealthHandler(stubPinger{})
	healthy.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	r := gin.New()
	r.GET("/health", healthy.Health)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"healthy","time":"2026-03-01T12:00:00Z","database":"postgres"}`, rec.Body.String())

	down := gin.New()
	down.GET("/health", NewHealthHandler(stubPinger{err: errors.New("dial tcp: refused")}).Health)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
