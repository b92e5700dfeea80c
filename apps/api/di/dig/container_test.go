package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/caplc/backend/apps/api/echo"
	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

func TestNew(t *testing.T) {
	t.Setenv("CAPLC_ENV", "test")
	t.Setenv("CAPLC_DATABASE_ENGINE", "memory")
	t.Setenv("CAPLC_SERVER_DISABLEREQLOGS", "true")

	c := New()
	err := c.Invoke(func(conf *core.Config, db core.DB, usrSvc user.Service, server *echoapi.Server) {
		assert.True(t, conf.TestMode)
		assert.Equal(t, "memory", conf.Database.Engine)
		assert.NotNil(t, db)
		assert.NotNil(t, usrSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}
