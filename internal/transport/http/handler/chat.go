package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"lyrnios-backend/internal/app"
	"lyrnios-backend/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateSessionRequest struct {
	ID    string `json:"id" binding:"max=64"`
	Title string `json:"title" binding:"max=255"`
}

type RenameSessionRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type AddMessageRequest struct {
	Role    string         `json:"role" binding:"required"`
	Content *string        `json:"content"`
	Data    datatypes.JSON `json:"data"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// an empty body creates a session with defaults
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.CreateSession(c.Request.Context(), app.CreateSessionInput{
		UserID:    userID,
		SessionID: req.ID,
		Title:     req.Title,
	})
	if err != nil {
		respondError(c, err, "create session failed")
		return
	}

	response.OK(c, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid offset")
		return
	}

	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err, "list sessions failed")
		return
	}

	response.OK(c, sessions)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	detail, err := h.chatService.GetSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "get session failed")
		return
	}

	response.OK(c, detail)
}

func (h *ChatHandler) RenameSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.RenameSession(c.Request.Context(), userID, c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err, "rename session failed")
		return
	}

	response.OK(c, session)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	if err := h.chatService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, err, "delete session failed")
		return
	}

	response.OK(c, gin.H{"deleted_session_id": sessionID})
}

func (h *ChatHandler) AddMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if string(req.Data) == "null" {
		req.Data = nil
	}

	message, err := h.chatService.AddMessage(c.Request.Context(), app.AddMessageInput{
		UserID:    userID,
		SessionID: c.Param("id"),
		Role:      req.Role,
		Content:   req.Content,
		Data:      req.Data,
	})
	if err != nil {
		respondError(c, err, "add message failed")
		return
	}

	response.OK(c, message)
}

// queryInt reads an optional non-negative integer query parameter; absent
// means zero.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.New("invalid " + key)
	}
	return value, nil
}
