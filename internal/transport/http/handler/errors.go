package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lyrnios-backend/internal/app"
	"lyrnios-backend/internal/pkg/aijson"
	"lyrnios-backend/internal/transport/http/middleware"
	"lyrnios-backend/internal/transport/http/response"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognised is attached to the context for the request logger and
// reported with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRole, err.Error())
	case errors.Is(err, app.ErrInvalidState):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidState, err.Error())
	case errors.Is(err, app.ErrUnsupportedProvider):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedProvider, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrDemoNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDemoNotFound, err.Error())
	case errors.Is(err, aijson.ErrMalformedPayload):
		response.Error(c, http.StatusInternalServerError, response.CodeMalformedPayload, err.Error())
	case errors.Is(err, app.ErrAIUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, response.CodeAIUnavailable, app.ErrAIUnavailable.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
	}
	return userID, ok
}
