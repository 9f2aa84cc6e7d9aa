package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	"smartstudy_backend/internals/testdb"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("RATE_LIMIT_DISABLED", "true")
	db := testdb.New(t)
	notifier := notifService.New(db, nil)
	app := fiber.New()
	SetupRoutes(app, db, Deps{
		Blobs:    ossHelper.NoopBlobService{},
		Notifier: notifier,
		Orders:   orderService.New(db, nil, notifier),
	})
	return app, db
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env
}

func registerAndLogin(t *testing.T, app *fiber.App, userName string) string {
	t.Helper()
	status, _ := do(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"user_name": userName, "email": userName + "@example.com", "password": "password-123",
		"class_level": "11th", "stream": "JEE",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := do(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"identifier": userName + "@example.com", "password": "password-123",
	})
	require.Equal(t, http.StatusOK, status)
	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestAuthFlowAndRoleGroups(t *testing.T) {
	app, db := newTestApp(t)
	token := registerAndLogin(t, app, "arjun")

	t.Run("me needs a token", func(t *testing.T) {
		status, _ := do(t, app, http.MethodGet, "/api/u/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("me with token", func(t *testing.T) {
		status, env := do(t, app, http.MethodGet, "/api/u/me", token, nil)
		require.Equal(t, http.StatusOK, status)
		var me struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, "arjun@example.com", me.Email)
		assert.Equal(t, "student", me.Role)
	})

	t.Run("student blocked from staff, admin and sales groups", func(t *testing.T) {
		for _, p := range []string{"/api/t/categories", "/api/a/users", "/api/s/dashboard"} {
			status, _ := do(t, app, http.MethodGet, p, token, nil)
			assert.Equal(t, http.StatusForbidden, status, p)
		}
	})

	t.Run("public routes work anonymously and with a token", func(t *testing.T) {
		status, _ := do(t, app, http.MethodGet, "/api/public/home", "", nil)
		assert.Equal(t, http.StatusOK, status)
		status, _ = do(t, app, http.MethodGet, "/api/public/batches", token, nil)
		assert.Equal(t, http.StatusOK, status)
		status, _ = do(t, app, http.MethodGet, "/api/public/home", "garbage-token", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("role change applies without a new token", func(t *testing.T) {
		require.NoError(t, db.Exec("UPDATE users SET role = ? WHERE user_name = ?", "teacher", "arjun").Error)
		status, _ := do(t, app, http.MethodGet, "/api/t/categories", token, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("logout blacklists the token", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPost, "/api/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = do(t, app, http.MethodGet, "/api/u/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
