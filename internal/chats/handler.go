package chats

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/qa"
	"docchat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat and query routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chats", h.create)
	rg.GET("/chats", h.list)
	rg.GET("/chats/:id", h.get)
	rg.POST("/query", h.query)
	rg.POST("/documents/:id/summarize", h.summarize)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title and documentId are required", nil)
		return
	}

	chat, err := h.Svc.CreateChat(c.Request.Context(), req.Title, req.DocumentID, req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create chat", nil)
		}
		return
	}

	c.Set("chatId", chat.ID)
	respond.JSON(c, http.StatusCreated, gin.H{"chatId": chat.ID})
}

func (h *Handler) list(c *gin.Context) {
	employeeID := c.Query("employeeId")
	documentID := c.Query("documentId")

	found, err := h.Svc.ListChats(c.Request.Context(), employeeID, documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list chats", nil)
		return
	}

	resp := make([]ChatResponse, 0, len(found))
	for _, chat := range found {
		resp = append(resp, toChatResponse(chat))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	chat, err := h.Svc.GetChat(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "chat not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch chat", nil)
		}
		return
	}

	c.Set("chatId", chat.ID)
	respond.JSON(c, http.StatusOK, toChatResponse(chat))
}

func (h *Handler) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "documentId and query are required", nil)
		return
	}

	c.Set("documentId", req.DocumentID)
	if req.ChatID != "" {
		c.Set("chatId", req.ChatID)
	}

	answer, err := h.Svc.Query(c.Request.Context(), QueryInput{
		DocumentID: req.DocumentID,
		Query:      req.Query,
		ChatID:     req.ChatID,
	})
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, answer)
}

func (h *Handler) summarize(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	summary, err := h.Svc.Summarize(c.Request.Context(), documentID)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) respondQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "chat not found", nil)
	case errors.Is(err, ErrDocumentNotReady):
		respond.Error(c, http.StatusConflict, "document_not_ready", "document is not processed yet", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, qa.ErrRetrieval):
		respond.Error(c, http.StatusBadGateway, "retrieval_failed", "failed to build retrieval context", nil)
	case errors.Is(err, qa.ErrModel):
		respond.Error(c, http.StatusBadGateway, "model_failed", "language model call failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "query failed", nil)
	}
}
