package dashboard

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"leadflow/internal/activity"
	"leadflow/internal/identity"
	"leadflow/internal/lead"
	"leadflow/internal/platform/logger"
	"leadflow/internal/user"
	"leadflow/pkg/testutil"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := NewService(lead.NewInMemoryStore(), user.NewInMemoryStore(), activity.NewInMemoryStore())
	passthrough := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(svc, passthrough, logger.Discard()).Register(r)
	return r
}

func TestDashboard_RoleGate(t *testing.T) {
	router := newTestRouter(t)

	cases := map[string]struct {
		role   identity.Role
		status int
	}{
		"admin":   {identity.RoleAdmin, http.StatusOK},
		"manager": {identity.RoleManager, http.StatusOK},
		"sales":   {identity.RoleSales, http.StatusForbidden},
	}
	for label, tc := range cases {
		t.Run(label, func(t *testing.T) {
			req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodGet, "/api/dashboard", nil), "user-1", tc.role)
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatus(t, rr, tc.status)
		})
	}
}

func TestDashboard_ReturnsStats(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodGet, "/api/dashboard", nil), "admin-1", identity.RoleAdmin)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	stats := testutil.UnmarshalResponse[Stats](t, rr)
	assert.Equal(t, Totals{}, stats.Totals, "empty stores produce zero totals")
}
