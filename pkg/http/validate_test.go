package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRequest struct {
	Date  string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" default:"50" validate:"gte=1,lte=100"`
}

func bindQuery(t *testing.T, target string, req any) any {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	return ReadAndValidateRequest(c, req)
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	req := &listRequest{}
	assert.Nil(t, bindQuery(t, "/?date=2025-01-10", req))
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, "2025-01-10", req.Date)
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	verr := bindQuery(t, "/?date=01/10/2025&limit=500", &listRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 2)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "ERR_DATETIME", byField["date"].Code)
	assert.Equal(t, "2006-01-02", byField["date"].Params["layout"])
	assert.Equal(t, "ERR_LTE", byField["limit"].Code)
	assert.Equal(t, "limit must be <= 100", byField["limit"].Message)
}

func TestReadAndValidateRequestBindError(t *testing.T) {
	errs, ok := bindQuery(t, "/?limit=abc", &listRequest{}).([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_BAD_REQUEST", errs[0].Code)
}
