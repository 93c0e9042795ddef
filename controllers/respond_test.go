package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/services"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", services.NotFound("issue"), http.StatusNotFound, "not_found"},
		{"validation", services.Validation("invalid category"), http.StatusBadRequest, "validation_error"},
		{"conflict", services.Conflict("you have already upvoted this issue"), http.StatusConflict, "conflict"},
		{"authorization", services.Authorization("not allowed"), http.StatusForbidden, "authorization_error"},
		{"external", services.External("image upload failed", errors.New("boom")), http.StatusBadGateway, "external_service_error"},
		{"internal", services.Internal("db down", errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"invalid transition",
			&services.TransitionError{Current: models.Resolved, Requested: models.InProgress},
			http.StatusUnprocessableEntity, "invalid_transition"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)

			var body struct {
				Error string `json:"error"`
				Kind  string `json:"kind"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantKind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, services.Internal("failed to load issue", errors.New("connection refused to 10.0.0.3:27017")))

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body.Error, "10.0.0.3", "raw storage errors never reach the caller")
}
