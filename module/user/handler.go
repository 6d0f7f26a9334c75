package user

import (
	"errors"
	"net/http"

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

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, errs.ErrRecordExists) {
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	if err != nil {
		logger.Errorf("[user] register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, errs.ErrNoPermission) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		logger.Errorf("[user] login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) Profile(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	u, err := h.svc.Profile(c.Request.Context(), userID)
	if errors.Is(err, errs.ErrRecordMiss) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		logger.Errorf("[user] profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching user profile"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) SearchByEmail(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	email := c.Query("email")
	u, err := h.svc.SearchByEmail(c.Request.Context(), email, userID)
	if errors.Is(err, errs.ErrArgs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required for search"})
		return
	}
	if errors.Is(err, errs.ErrRecordMiss) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found or you are searching for yourself"})
		return
	}
	if err != nil {
		logger.Errorf("[user] search: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during search"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) SaveContact(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	var req SaveContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Contact ID and alias name are required"})
		return
	}
	err := h.svc.SaveContact(c.Request.Context(), userID, req.ContactID, req.AliasName)
	if errors.Is(err, errs.ErrArgs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Contact ID and alias name are required"})
		return
	}
	if err != nil {
		logger.Errorf("[user] save contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while saving alias"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact alias saved successfully"})
}

func (h *Handler) Contacts(c *gin.Context) {
	userID, ok := mid.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	contacts, err := h.svc.Contacts(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("[user] contacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching saved contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}
