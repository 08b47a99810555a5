package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lyrnios-backend/internal/app"
	"lyrnios-backend/internal/transport/http/response"
)

type GenerateHandler struct {
	generateService *app.GenerateService
	demoService     *app.DemoService
}

type PromptRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	SessionID string `json:"session_id" binding:"max=64"`
}

func NewGenerateHandler(generateService *app.GenerateService, demoService *app.DemoService) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
		demoService:     demoService,
	}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.generateService.Generate(c.Request.Context(), app.GenerateInput{
		UserID:    userID,
		Prompt:    req.Prompt,
		SessionID: req.SessionID,
	})
	if err != nil {
		respondError(c, err, "generate failed")
		return
	}

	response.OK(c, result)
}

func (h *GenerateHandler) Demo(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.demoService.Load(req.Prompt)
	if err != nil {
		respondError(c, err, "load demo failed")
		return
	}

	response.OK(c, result)
}
