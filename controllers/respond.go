package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/services"
)

// respondError maps a service error kind onto an HTTP status. Internal
// details stay in the logs; callers only ever see the stable kind and a
// readable message.
func respondError(c *gin.Context, err error) {
	kind := services.Kind(err)

	status := http.StatusInternalServerError
	switch kind {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindInvalidTransition:
		status = http.StatusUnprocessableEntity
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindAuthorization:
		status = http.StatusForbidden
	case services.KindExternalService:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
	}

	c.JSON(status, gin.H{
		"error": services.Public(err),
		"kind":  string(kind),
	})
}
