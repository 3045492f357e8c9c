package users

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kitobxon/kitobxon/internal/testgen"
	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/binder"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	return e
}

func TestHandlers(t *testing.T) {
	db := testgen.NewDB(t)
	store := newMemoryStore()
	e := newTestEcho(t)
	RegisterRoutes(e, db, store, auth.NewMiddleware(nil))
	testgen.CreateUser(t, db, testgen.UserOptions{ExternalID: "ext-h", Email: "h@example.com"})

	t.Run("retrieve by external id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/ext-h", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "h@example.com", user.Email)
	})

	t.Run("retrieve unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/ext-nope", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/users/ext-h", strings.NewReader(`{"name":"  Hamid  ","location":"Bukhara"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var user models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.NotNil(t, user.Name)
		assert.Equal(t, "Hamid", *user.Name)
	})

	t.Run("update rejects bad avatar urls", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/users/ext-h", strings.NewReader(`{"avatar_url":"ftp://nope"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("upload avatar", func(t *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, err := w.CreateFormFile("file", "me.png")
		require.NoError(t, err)
		_, err = part.Write(testgen.GenerateImage(t, "image/png"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/users/ext-h/avatar", body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, store.objects, "avatars/ext-h.png")
	})

	t.Run("sync without verification trusts the body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/sync", strings.NewReader(`{"external_user_id":"ext-new","email":"new@example.com"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, testgen.Count(t, db, "users", "external_id = ?", "ext-new"))
	})
}

func TestHandlers_WithVerification(t *testing.T) {
	db := testgen.NewDB(t)
	e := newTestEcho(t)
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: "secret"})
	require.NoError(t, err)
	RegisterRoutes(e, db, newMemoryStore(), auth.NewMiddleware(verifier))
	testgen.CreateUser(t, db, testgen.UserOptions{ExternalID: "ext-a"})
	testgen.CreateUser(t, db, testgen.UserOptions{ExternalID: "ext-b"})

	claims := auth.Claims{Email: "a@example.com", UserMetadata: auth.UserMetadata{Name: "A"}}
	claims.Subject = "ext-a"
	token, err := verifier.IssueToken(claims)
	require.NoError(t, err)

	t.Run("cannot edit someone else's profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/users/ext-b", strings.NewReader(`{"name":"Mallory"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/users/ext-a", strings.NewReader(`{"name":"A"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("sync uses token claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/sync", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var user models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "ext-a", user.ExternalID)
		assert.Equal(t, "a@example.com", user.Email)
	})
}
