package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
	"societyhub/internal/middleware"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/pkg/params"
	"societyhub/internal/pkg/response"
	"societyhub/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	amenities := rg.Group("/amenities")
	amenities.GET("/:id/availability", h.GetAvailability)
	amenities.GET("/:id/conflicts", h.CheckConflict)

	bookings := rg.Group("/bookings")
	bookings.POST("", middleware.RequireRole(domain.RoleResident, domain.RoleAdmin), h.CreateBooking)
	bookings.GET("/mine", h.ListMine)
	bookings.GET("/:id", h.GetBooking)
	bookings.GET("", middleware.AdminOnly(), h.ListBookings)
	bookings.PATCH("/:id/approve", middleware.AdminOnly(), h.ApproveBooking)
	bookings.PATCH("/:id/reject", middleware.AdminOnly(), h.RejectBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), actor, req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.Approve(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RejectBooking(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req RejectBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	b, err := h.service.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	limit, offset := params.Page(c)

	rows, err := h.service.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) ListBookings(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	amenityID, err := params.OptionalInt64(c, "amenity_id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	limit, offset := params.Page(c)

	rows, err := h.service.List(c.Request.Context(), actor, repository.BookingFilter{
		AmenityID: amenityID,
		Status:    domain.BookingStatus(c.Query("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) CheckConflict(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	start, err := params.Time(c, "start")
	if err != nil {
		response.FromError(c, err)
		return
	}
	end, err := params.Time(c, "end")
	if err != nil {
		response.FromError(c, err)
		return
	}
	exclude, err := params.OptionalInt64(c, "exclude")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var excludeID *int64
	if exclude > 0 {
		excludeID = &exclude
	}

	res, err := h.service.CheckConflict(c.Request.Context(), id, start, end, excludeID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	date, err := params.Date(c, "date", clock.Today(h.service.clock, h.service.loc))
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.service.Availability(c.Request.Context(), id, date)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
