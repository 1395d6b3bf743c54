package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// call runs h against a request with body as JSON.  setup may populate the
// context, for example with the values JWTAuth would set.
func call(t *testing.T, h echo.HandlerFunc, method, target, body string, setup ...func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	for _, f := range setup {
		f(c)
	}
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func withUser(id, role string) func(echo.Context) {
	return func(c echo.Context) {
		c.Set("user_id", id)
		c.Set("role", role)
	}
}
