package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/models"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service *service.Service
}

func NewGiveawayHandler(service *service.Service) *GiveawayHandler {
	return &GiveawayHandler{service: service}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", h.create)
		giveaways.GET("", h.list)
		giveaways.GET("/:id", h.get)
		giveaways.POST("/:id/end", h.forceEnd)
	}
}

type GiveawayResponse struct {
	ID          string     `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	ChatID      int64      `json:"chat_id"`
	MessageID   int64      `json:"message_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Prize       string     `json:"prize"`
	Condition   string     `json:"condition,omitempty"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	EndsAt      time.Time  `json:"ends_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	WinnerID    *int64     `json:"winner_id,omitempty"`
}

func toResponse(g *giveaway.Giveaway) GiveawayResponse {
	resp := GiveawayResponse{
		ID:          g.ID,
		OwnerID:     g.OwnerID,
		ChatID:      g.ChatID,
		MessageID:   g.MessageID,
		Title:       g.Title,
		Description: g.Description,
		Prize:       g.Prize,
		Condition:   g.Condition,
		Status:      string(g.Status()),
		StartedAt:   g.StartedAt,
		EndsAt:      g.EndsAt,
		EndedAt:     g.EndedAt,
	}
	// Only a real user id is exposed; the claim marker and the no-winner
	// sentinel are storage details.
	if g.WinnerID != nil && *g.WinnerID > 0 {
		resp.WinnerID = g.WinnerID
	}
	return resp
}

func (h *GiveawayHandler) create(c *gin.Context) {
	var input models.GiveawayCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	g, err := h.service.Create(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(g))
}

func (h *GiveawayHandler) get(c *gin.Context) {
	g, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(g))
}

func (h *GiveawayHandler) list(c *gin.Context) {
	status := giveaway.Status(c.DefaultQuery("status", string(giveaway.StatusActive)))
	switch status {
	case giveaway.StatusActive, giveaway.StatusResolving, giveaway.StatusEnded:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	giveaways, err := h.service.List(c.Request.Context(), status, 100)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := make([]GiveawayResponse, 0, len(giveaways))
	for i := range giveaways {
		response = append(response, toResponse(&giveaways[i]))
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": response})
}

func (h *GiveawayHandler) forceEnd(c *gin.Context) {
	g, err := h.service.ForceEnd(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(g))
}

func (h *GiveawayHandler) writeError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var syntaxErr *condition.SyntaxError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &syntaxErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "requester is not an admin of the chat"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "giveaway not found"})
	case errors.Is(err, service.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "giveaway is already resolved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
