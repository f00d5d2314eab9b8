package accounts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/klsrv/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMutationsApp(t *testing.T) (*fiber.App, accounts.RepositoryManager) {
	t.Helper()

	repo := setupManager(t)
	tokens := newTokenService("http-test-key")

	app := fiber.New()
	accounts.NewMutationsController(repo, tokens).RegisterRoutes(app)

	return app, repo
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	// bcrypt at our cost is slow enough to trip fiber's default test timeout
	res, err := app.Test(req, 30_000)
	require.NoError(t, err)

	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	res.Body.Close()

	return out
}

func TestMutationsRegister(t *testing.T) {
	app, _ := newMutationsApp(t)

	res := postJSON(t, app, "/mutations/register", fiber.Map{
		"username":        "test",
		"email":           "test@foo.ru",
		"password":        "Passw0rd33",
		"repeat_password": "Passw0rd33",
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	body := decodeBody(t, res)
	assert.NotEmpty(t, body["token"])

	profile, ok := body["profile"].(map[string]any)
	require.True(t, ok)

	identity, ok := profile["identity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "test", identity["username"])
	assert.Equal(t, "test@foo.ru", identity["email"])

	// the hash never leaves the service
	_, leaked := identity["password_hash"]
	assert.False(t, leaked)
}

func TestMutationsRegisterWeakPassword(t *testing.T) {
	app, _ := newMutationsApp(t)

	res := postJSON(t, app, "/mutations/register", fiber.Map{
		"username":        "test",
		"email":           "test@foo.ru",
		"password":        "1234",
		"repeat_password": "1234",
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)

	body := decodeBody(t, res)
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, messages)
}

func TestMutationsRegisterMissingFields(t *testing.T) {
	app, _ := newMutationsApp(t)

	res := postJSON(t, app, "/mutations/register", fiber.Map{
		"username": "test",
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)

	body := decodeBody(t, res)
	assert.NotEmpty(t, body["messages"])
}

func TestMutationsProfileUpdate(t *testing.T) {
	app, repo := newMutationsApp(t)
	created := registerProfile(t, repo, "anna", "anna@foo.ru", "Passw0rd33")

	res := postJSON(t, app, "/mutations/profile", fiber.Map{
		"user_id":    created.IdentityID.String(),
		"first_name": "Anna",
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	profile, ok := body["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Anna", profile["first_name"])
}

func TestMutationsProfileUpdateBadUserID(t *testing.T) {
	app, _ := newMutationsApp(t)

	res := postJSON(t, app, "/mutations/profile", fiber.Map{
		"user_id":  "not-a-uuid",
		"username": "whoever",
	})
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestMutationsProfileUpdateNotFound(t *testing.T) {
	app, _ := newMutationsApp(t)

	res := postJSON(t, app, "/mutations/profile", fiber.Map{
		"user_id":  "4f2c8c1e-2b6e-4a37-9c83-000000000003",
		"username": "whoever",
	})
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestMutationsPasswordChange(t *testing.T) {
	app, repo := newMutationsApp(t)
	created := registerProfile(t, repo, "boris", "boris@foo.ru", "Passw0rd33")

	res := postJSON(t, app, "/mutations/password", fiber.Map{
		"user_id":         created.IdentityID.String(),
		"old_password":    "Passw0rd33",
		"new_password":    "N3wSecret55",
		"repeat_password": "N3wSecret55",
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.NotEmpty(t, body["token"])

	reloaded, err := repo.Profiles().GetByIdentityID(context.Background(), created.IdentityID)
	require.NoError(t, err)
	assert.NoError(t, accounts.ComparePasswordAndHash("N3wSecret55", reloaded.Identity.PasswordHash))
}

func TestMutationsPasswordChangeWrongOldPassword(t *testing.T) {
	app, repo := newMutationsApp(t)
	created := registerProfile(t, repo, "boris", "boris@foo.ru", "Passw0rd33")

	res := postJSON(t, app, "/mutations/password", fiber.Map{
		"user_id":         created.IdentityID.String(),
		"old_password":    "wrong-password",
		"new_password":    "N3wSecret55",
		"repeat_password": "N3wSecret55",
	})
	require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMutationsRegisterBadBody(t *testing.T) {
	app, _ := newMutationsApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/mutations/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
