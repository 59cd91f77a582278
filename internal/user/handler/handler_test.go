package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow/internal/identity"
	"leadflow/internal/identity/revocation"
	"leadflow/internal/platform/logger"
	"leadflow/internal/platform/middleware"
	"leadflow/internal/user"
	"leadflow/pkg/testutil"
)

// newTestRouter wires the handler against a real service, memory store, and
// real JWT verification so the routes behave as in production.
func newTestRouter(t *testing.T) (chi.Router, *user.Service) {
	t.Helper()
	jwt := identity.NewJWTService("test-signing-key", "leadflow", "leadflow")
	trl := revocation.NewMemoryTRL()
	svc := user.NewService(user.NewInMemoryStore(), jwt, trl, time.Hour, logger.Discard())
	requireAuth := middleware.RequireAuth(jwt, jwt, trl, logger.Discard())

	r := chi.NewRouter()
	New(svc, requireAuth, logger.Discard()).Register(r)
	return r, svc
}

func TestRegisterAndLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Sam Sales", "email": "sam@leadflow.test", "password": "hunter22",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	registered := testutil.UnmarshalResponse[struct {
		User  user.Profile `json:"user"`
		Token string       `json:"token"`
	}](t, rr)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, identity.RoleSales, registered.User.Role)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "sam@leadflow.test", "password": "hunter22",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	// The issued token opens the protected surface.
	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	me := testutil.UnmarshalResponse[user.Profile](t, rr)
	assert.Equal(t, registered.User.ID, me.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@leadflow.test", "password": "wrong",
	}))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, rr, "unauthorized")
}

func TestLogoutRevokesToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Sam", "email": "sam@leadflow.test", "password": "hunter22",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	registered := testutil.UnmarshalResponse[struct {
		Token string `json:"token"`
	}](t, rr)

	logout := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+registered.Token)
	testutil.AssertStatus(t, testutil.DoRequest(router, logout), http.StatusNoContent)

	// The revoked token no longer opens protected routes.
	me := testutil.NewJSONRequest(t, http.MethodGet, "/api/users/me", nil)
	me.Header.Set("Authorization", "Bearer "+registered.Token)
	testutil.AssertStatus(t, testutil.DoRequest(router, me), http.StatusUnauthorized)
}

func TestUserAdminRequiresRole(t *testing.T) {
	router, svc := newTestRouter(t)

	_, salesToken, err := svc.Register(t.Context(), "Sam", "sam@leadflow.test", "hunter22", "SALES")
	require.NoError(t, err)
	_, adminToken, err := svc.Register(t.Context(), "Ada", "ada@leadflow.test", "hunter22", "ADMIN")
	require.NoError(t, err)

	list := testutil.NewJSONRequest(t, http.MethodGet, "/api/users", nil)
	list.Header.Set("Authorization", "Bearer "+salesToken)
	testutil.AssertStatus(t, testutil.DoRequest(router, list), http.StatusForbidden)

	list = testutil.NewJSONRequest(t, http.MethodGet, "/api/users", nil)
	list.Header.Set("Authorization", "Bearer "+adminToken)
	rr := testutil.DoRequest(router, list)
	testutil.AssertStatus(t, rr, http.StatusOK)
	profiles := testutil.UnmarshalResponse[[]user.Profile](t, rr)
	assert.Len(t, *profiles, 2)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/users/me", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
