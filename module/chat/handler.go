package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"conecta/logger"
	mid "conecta/middleware"
	errs "conecta/tools/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) StartConversation(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Target user ID is required"})
		return
	}
	conversationID, created, err := h.svc.StartConversation(c.Request.Context(), userID, req.TargetUserID)
	if errors.Is(err, errs.ErrArgs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Target user ID is required"})
		return
	}
	if err != nil {
		logger.Errorf("[chat] start conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while starting conversation"})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Conversation already exists", "conversationId": conversationID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Conversation started successfully", "conversationId": conversationID})
}

func (h *Handler) Conversations(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	list, err := h.svc.Conversations(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("[chat] conversations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching conversations list"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) History(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid conversation id"})
		return
	}
	detail, err := h.svc.History(c.Request.Context(), conversationID, userID)
	if errors.Is(err, errs.ErrNoPermission) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied to this conversation"})
		return
	}
	if err != nil {
		logger.Errorf("[chat] history conv=%d: %v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching conversation data"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Conversation ID and content are required"})
		return
	}
	m, err := h.svc.SendMessage(c.Request.Context(), userID, req.ConversationID, req.Content, req.Type)
	if errors.Is(err, errs.ErrArgs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Conversation ID and content are required"})
		return
	}
	if errors.Is(err, errs.ErrNoPermission) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied to this conversation"})
		return
	}
	if err != nil {
		logger.Errorf("[chat] send message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error sending message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent successfully",
		"messageId": m.ID,
		"success":   true,
	})
}
