package directory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
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
	rg.GET("/me", h.Me)

	rg.GET("/users", middleware.AdminOnly(), h.ListUsers)
	rg.POST("/users", middleware.AdminOnly(), h.CreateUser)

	rg.GET("/amenities", h.ListAmenities)
	rg.GET("/amenities/:id", h.GetAmenity)
	rg.POST("/amenities", middleware.AdminOnly(), h.CreateAmenity)

	rg.GET("/apartments", h.ListApartments)
	rg.POST("/apartments", middleware.AdminOnly(), h.CreateApartment)
}

func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	profile, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	users, err := h.service.ListUsers(c.Request.Context(), actor, domain.UserRole(c.Query("role")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	u, err := h.service.CreateUser(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u})
}

func (h *Handler) ListAmenities(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	rows, err := h.service.ListAmenities(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"amenities": rows})
}

func (h *Handler) GetAmenity(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	a, err := h.service.GetAmenity(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"amenity": a})
}

func (h *Handler) CreateAmenity(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	var req CreateAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	a, err := h.service.CreateAmenity(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"amenity": a})
}

func (h *Handler) ListApartments(c *gin.Context) {
	rows, err := h.service.ListApartments(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"apartments": rows})
}

func (h *Handler) CreateApartment(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	var req CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	a, err := h.service.CreateApartment(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"apartment": a})
}
