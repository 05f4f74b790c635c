package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"Campus_Portal/internal/config"
	"Campus_Portal/internal/middleware"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/router"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type app struct {
	engine http.Handler
	inbox  map[string]string
}

func newApp(t *testing.T) *app {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := sqlstore.Open(sqlstore.DriverSQLite, fmt.Sprintf("file:r_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(db, sqlstore.Limits{
		Complaint: sqlstore.Limit{Window: 7 * 24 * time.Hour, Max: 1},
		Listing:   sqlstore.Limit{Window: 72 * time.Hour, Max: 1},
		LostFound: sqlstore.Limit{Window: 24 * time.Hour, Max: 2},
	}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.AllowOrigins = []string{"http://localhost:3000"}
	cfg.JWT = config.JWT{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour, SessionTTL: time.Minute}
	cfg.Auth.AllowedEmailDomain = "campus.edu"
	cfg.Chat = config.Chat{HistoryLimit: 50, MessageTTL: time.Hour, Channel: "chat:test"}

	a := &app{inbox: map[string]string{}}
	code := regexp.MustCompile(`\b[0-9]{6}\b`)
	engine, _, err := router.Build(router.Deps{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Mailer: func(to, subject, html string) error {
			a.inbox[to] = code.FindString(html)
			return nil
		},
	})
	require.NoError(t, err)
	a.engine = engine
	return a
}

func (a *app) call(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

type loginResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	SessionCode  string `json:"session_code"`
	Redirect     string `json:"redirect"`
}

func (a *app) signup(t *testing.T, email, password string) loginResp {
	t.Helper()
	w := a.call(http.MethodPost, "/api/auth/email/code", "", gin.H{"scope": "register", "email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, a.inbox[email])

	w = a.call(http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": password, "code": a.inbox[email]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out loginResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAccountFlow(t *testing.T) {
	a := newApp(t)
	login := a.signup(t, "asha@campus.edu", "correct-horse")

	assert.Equal(t, "student", login.Role)
	assert.Equal(t, "/main/student/dashboard", login.Redirect)
	assert.Regexp(t, `^@[A-Z0-9]{5}_#$`, login.SessionCode)

	w := a.call(http.MethodGet, "/api/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, login.SessionCode, me["session_code"])

	// 第二次登录代号不变，旧 token 失效
	w = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@campus.edu", "password": "correct-horse"})
	var again loginResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, login.SessionCode, again.SessionCode)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/me", login.AccessToken, nil).Code)

	require.Equal(t, http.StatusOK, a.call(http.MethodPost, "/api/auth/logout", again.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/me", again.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": again.RefreshToken}).Code)
}

func TestRegisterRejects(t *testing.T) {
	a := newApp(t)
	w := a.call(http.MethodPost, "/api/auth/register", "", gin.H{"email": "x@gmail.com", "password": "long-enough", "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/api/auth/register", "", gin.H{"email": "y@campus.edu", "password": "long-enough", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@campus.edu", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComplaintFlowThroughRouter(t *testing.T) {
	a := newApp(t)
	login := a.signup(t, "ravi@campus.edu", "correct-horse")

	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodPost, "/api/complaints", "", gin.H{"complaint": "x"}).Code)

	w := a.call(http.MethodPost, "/api/complaints", login.AccessToken, gin.H{"complaint": "desks are broken", "isAnonymous": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = a.call(http.MethodGet, "/api/complaints", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"session_code":"Anonymous"`)
	assert.NotContains(t, w.Body.String(), "author_id")
	assert.NotContains(t, w.Body.String(), login.SessionCode)

	w = a.call(http.MethodPost, "/api/complaints", login.AccessToken, gin.H{"complaint": "again"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// API 未登录返回 401，不做页面跳转
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/lost-found", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodPost, "/api/marketplace", "", gin.H{"product_title": "x"}).Code)

	w = a.call(http.MethodPost, "/api/marketplace", login.AccessToken, gin.H{
		"product_title": "Drafter", "description": "barely used", "price": 350, "contact_info": "9876543210", "owner_name": "Asha",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.call(http.MethodGet, "/api/marketplace", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Drafter")
	assert.NotContains(t, w.Body.String(), "9876543210")
	assert.NotContains(t, w.Body.String(), "owner_email")
	assert.Contains(t, a.call(http.MethodGet, "/api/marketplace", login.AccessToken, nil).Body.String(), "9876543210")
}

func TestPagesAndMetrics(t *testing.T) {
	a := newApp(t)
	login := a.signup(t, "meena@campus.edu", "correct-horse")

	req := httptest.NewRequest(http.MethodGet, "/main/faculty/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: login.AccessToken})
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/main/student/dashboard", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/main/student/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: login.AccessToken})
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"/main/student/dashboard","role":"student"}`, w.Body.String())

	w = a.call(http.MethodGet, "/main/student/dashboard", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login?next="))

	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/health", "", nil).Code)
	w = a.call(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}
