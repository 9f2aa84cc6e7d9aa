package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	userModel "smartstudy_backend/internals/features/users/user/model"
	helper "smartstudy_backend/internals/helpers"
	"smartstudy_backend/internals/testdb"
)

// newAuthApp memasang handler auth; user login disimulasikan lewat header X-User-ID.
func newAuthApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error { return Login(db, c) })
	app.Post("/refresh-token", func(c *fiber.Ctx) error { return RefreshToken(db, c) })
	app.Post("/change-password", func(c *fiber.Ctx) error {
		if id, err := uuid.Parse(c.Get("X-User-ID")); err == nil {
			c.Locals(helper.LocUserID, id)
		}
		return ChangePassword(db, c)
	})
	return app
}

func post(t *testing.T, app *fiber.App, path string, userID uuid.UUID, body any) (int, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env.Data
}

func login(t *testing.T, app *fiber.App, identifier, password string) int {
	t.Helper()
	status, _ := post(t, app, "/login", uuid.Nil, fiber.Map{"identifier": identifier, "password": password})
	return status
}

func TestRefreshRotationRejectsReuse(t *testing.T) {
	db := testdb.New(t)
	app := newAuthApp(db)
	ctx := context.Background()
	u := testdb.CreateUser(t, db, constants.RoleStudent)

	pair, err := IssueTokens(ctx, db, u, "test", "127.0.0.1")
	require.NoError(t, err)

	status, data := post(t, app, "/refresh-token", uuid.Nil, fiber.Map{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	var rotated TokenPair
	require.NoError(t, json.Unmarshal(data, &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// token lama sudah dicabut saat rotasi
	status, _ = post(t, app, "/refresh-token", uuid.Nil, fiber.Map{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
	_, err = RotateRefreshToken(ctx, db, pair.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrTokenRevoked)

	status, _ = post(t, app, "/refresh-token", uuid.Nil, fiber.Map{"refresh_token": rotated.RefreshToken})
	assert.Equal(t, http.StatusOK, status)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := RotateRefreshToken(ctx, db, pair.AccessToken, "", "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"typ": "refresh", "sub": u.ID.String(), "exp": nowUTC().Add(refreshTTLDefault).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = RotateRefreshToken(ctx, db, raw, "", "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing token", func(t *testing.T) {
		status, _ := post(t, app, "/refresh-token", uuid.Nil, fiber.Map{})
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestInactiveUserCannotLoginOrRefresh(t *testing.T) {
	db := testdb.New(t)
	app := newAuthApp(db)
	ctx := context.Background()
	u := testdb.CreateUser(t, db, constants.RoleStudent)

	assert.Equal(t, http.StatusOK, login(t, app, u.Email, testdb.TestPassword))
	pair, err := IssueTokens(ctx, db, u, "", "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	assert.Equal(t, http.StatusForbidden, login(t, app, u.Email, testdb.TestPassword))
	assert.Equal(t, http.StatusForbidden, login(t, app, u.UserName, testdb.TestPassword))
	// password salah tetap 401, status akun tidak dibocorkan
	assert.Equal(t, http.StatusUnauthorized, login(t, app, u.Email, "wrong-password"))

	status, _ := post(t, app, "/refresh-token", uuid.Nil, fiber.Map{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestChangePassword(t *testing.T) {
	db := testdb.New(t)
	app := newAuthApp(db)
	ctx := context.Background()
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	const newPassword = "brand-new-pass-9"

	pair, err := IssueTokens(ctx, db, u, "", "")
	require.NoError(t, err)

	cases := []struct {
		name string
		user uuid.UUID
		body fiber.Map
		want int
	}{
		{"not logged in", uuid.Nil, fiber.Map{"old_password": testdb.TestPassword, "new_password": newPassword}, http.StatusUnauthorized},
		{"wrong old password", u.ID, fiber.Map{"old_password": "nope-nope", "new_password": newPassword}, http.StatusUnauthorized},
		{"same password", u.ID, fiber.Map{"old_password": testdb.TestPassword, "new_password": testdb.TestPassword}, http.StatusUnprocessableEntity},
		{"too short", u.ID, fiber.Map{"old_password": testdb.TestPassword, "new_password": "short"}, http.StatusUnprocessableEntity},
		{"ok", u.ID, fiber.Map{"old_password": testdb.TestPassword, "new_password": newPassword}, http.StatusOK},
	}
	for _, tc := range cases {
		status, _ := post(t, app, "/change-password", tc.user, tc.body)
		assert.Equal(t, tc.want, status, tc.name)
	}

	assert.Equal(t, http.StatusUnauthorized, login(t, app, u.Email, testdb.TestPassword))
	assert.Equal(t, http.StatusOK, login(t, app, u.Email, newPassword))

	// refresh token sebelum ganti password ikut dicabut
	_, err = RotateRefreshToken(ctx, db, pair.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestUpsertGoogleUser(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	existing := testdb.CreateUser(t, db, constants.RoleTeacher)

	countUsers := func() int64 {
		var n int64
		require.NoError(t, db.Model(&userModel.UserModel{}).Count(&n).Error)
		return n
	}
	before := countUsers()

	t.Run("links existing account by email", func(t *testing.T) {
		u, err := upsertGoogleUser(ctx, db, strings.ToUpper(existing.Email), "Priya Nair", "google-sub-1")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, u.ID)
		assert.Equal(t, constants.RoleTeacher, u.Role)
		require.NotNil(t, u.GoogleID)
		assert.Equal(t, "google-sub-1", *u.GoogleID)
		assert.Equal(t, before, countUsers())

		var got userModel.UserModel
		require.NoError(t, db.First(&got, "id = ?", existing.ID).Error)
		require.NotNil(t, got.GoogleID)
		assert.Equal(t, "google-sub-1", *got.GoogleID)
	})

	t.Run("finds by google id after email change", func(t *testing.T) {
		u, err := upsertGoogleUser(ctx, db, "renamed@example.com", "Priya Nair", "google-sub-1")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, u.ID)
		assert.Equal(t, before, countUsers())
	})

	t.Run("creates a student for a new account", func(t *testing.T) {
		u, err := upsertGoogleUser(ctx, db, "Rahul.Verma@Example.com", "Rahul Kumar Verma", "google-sub-2")
		require.NoError(t, err)
		assert.NotEqual(t, existing.ID, u.ID)
		assert.Equal(t, "rahul.verma@example.com", u.Email)
		assert.Equal(t, constants.RoleStudent, u.Role)
		assert.Equal(t, "Rahul Kumar", u.FirstName)
		assert.Equal(t, "Verma", u.LastName)
		assert.True(t, u.IsActive)
		assert.Equal(t, before+1, countUsers())
	})
}
