package preapproval

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
	g := rg.Group("/pre-approvals")
	g.POST("", middleware.RequireRole(domain.RoleResident, domain.RoleAdmin), h.Create)
	g.GET("", h.List)
	g.GET("/counts", h.Counts)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/arrive", middleware.StaffOnly(), h.MarkArrived)
	g.PATCH("/:id/cancel", h.Cancel)
	g.PATCH("/:id/complete", middleware.StaffOnly(), h.Complete)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req CreatePreApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"pre_approval": p})
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pre_approval": p})
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	f, err := listFilter(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	rows, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pre_approvals": rows})
}

func (h *Handler) Counts(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	f, err := listFilter(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	counts, err := h.service.Counts(c.Request.Context(), actor, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"counts": counts})
}

func (h *Handler) MarkArrived(c *gin.Context) {
	h.transition(c, func(c *gin.Context, actor domain.Actor, id int64) (any, error) {
		return h.service.MarkArrived(c.Request.Context(), actor, id)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, func(c *gin.Context, actor domain.Actor, id int64) (any, error) {
		p, err := h.service.Cancel(c.Request.Context(), actor, id)
		if err != nil {
			return nil, err
		}
		return gin.H{"pre_approval": p}, nil
	})
}

func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, func(c *gin.Context, actor domain.Actor, id int64) (any, error) {
		p, err := h.service.Complete(c.Request.Context(), actor, id)
		if err != nil {
			return nil, err
		}
		return gin.H{"pre_approval": p}, nil
	})
}

func (h *Handler) transition(c *gin.Context, fn func(*gin.Context, domain.Actor, int64) (any, error)) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, err := params.ID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	out, err := fn(c, actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func listFilter(c *gin.Context) (ListFilter, error) {
	apartmentID, err := params.OptionalInt64(c, "apartment_id")
	if err != nil {
		return ListFilter{}, err
	}
	limit, offset := params.Page(c)
	return ListFilter{
		Status:      domain.PreApprovalStatus(c.Query("status")),
		Date:        c.Query("date"),
		ApartmentID: apartmentID,
		Limit:       limit,
		Offset:      offset,
	}, nil
}
