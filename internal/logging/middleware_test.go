package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	for _, path := range []string{"/ok", "/fail"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, "/ok", ok["uri"])
	assert.EqualValues(t, http.StatusOK, ok["status"])
	assert.NotContains(t, ok, "error")

	failed := entries[1].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, failed["status"])
	assert.Contains(t, failed, "error")
}
