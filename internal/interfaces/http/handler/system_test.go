package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) Ping() error {
	return s.err
}

func setupSystemRouter(db HealthChecker) *gin.Engine {
	router := gin.New()
	NewSystemHandler(db).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestSystemHandler_Status(t *testing.T) {
	router := setupSystemRouter(stubHealthChecker{})

	w := getPath(router, "/api/v1/status")

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data StatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "BookLoop Lending API", env.Data.Name)
	assert.NotEmpty(t, env.Data.GoVersion)
}

func TestSystemHandler_Health(t *testing.T) {
	router := setupSystemRouter(stubHealthChecker{})

	w := getPath(router, "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSystemHandler_Health_DatabaseDown(t *testing.T) {
	router := setupSystemRouter(stubHealthChecker{err: errors.New("connection refused")})

	w := getPath(router, "/api/v1/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var env struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "unreachable", env.Data.Database)
}
