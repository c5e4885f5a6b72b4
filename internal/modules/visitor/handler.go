package visitor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/middleware"
	"societyhub/internal/pkg/params"
	"societyhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/visitors")
	g.POST("", middleware.StaffOnly(), h.LogEntry)
	g.GET("", middleware.StaffOnly(), h.ListByDay)
	g.GET("/active", middleware.StaffOnly(), h.ListActive)
	g.GET("/stats", middleware.StaffOnly(), h.Stats)
	g.PATCH("/:id/checkout", middleware.StaffOnly(), h.Checkout)

	rg.GET("/apartments/:id/visitors", h.ListByApartment)
}

func (h *Handler) LogEntry(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	v, err := h.service.LogEntry(c.Request.Context(), actor, req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"visitor": v})
}

func (h *Handler) Checkout(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	v, err := h.service.Checkout(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"visitor": v})
}

func (h *Handler) ListActive(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	limit, offset := params.Page(c)

	rows, err := h.service.ListActive(c.Request.Context(), actor, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"visitors": rows})
}

func (h *Handler) ListByDay(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	limit, offset := params.Page(c)

	rows, err := h.service.ListByDay(c.Request.Context(), actor, c.Query("date"), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"visitors": rows})
}

func (h *Handler) ListByApartment(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	limit, offset := params.Page(c)

	rows, err := h.service.ListByApartment(c.Request.Context(), actor, id, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"visitors": rows})
}

func (h *Handler) Stats(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
