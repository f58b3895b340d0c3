package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth-gateway/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/shoenig/test/must"
)

func TestRecovery_and_RequestLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger.SetOutput(&buf, "INFO")
	t.Cleanup(func() { logger.Init("INFO") })

	router := gin.New()
	router.Use(RequestLog(), Recovery())
	router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	must.Eq(t, http.StatusInternalServerError, rec.Code)
	must.StrContains(t, rec.Body.String(), "internal error")

	out := buf.String()
	must.StrContains(t, out, `"panic":"kaboom"`)
	must.StrContains(t, out, `"msg":"request"`)
	must.StrContains(t, out, `"status":500`)
}
