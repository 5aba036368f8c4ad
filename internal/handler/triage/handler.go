package triage

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-triage/internal/handler"
	"github.com/jwalitptl/clinic-triage/internal/model"
)

// Service is the part of the triage service the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, req *model.RegisterPatientRequest) (model.Patient, bool, error)
	Remove(ctx context.Context, cpf string) (model.Patient, error)
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error)
	Board(ctx context.Context) (model.QueueBoard, error)
	ListQueue(ctx context.Context) (model.Report, error)
	HistoryReport(ctx context.Context) (model.Report, error)
	Symptoms() []model.SymptomInfo
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.RegisterPatient)
		patients.GET("/search", h.SearchPatient)
		patients.DELETE("/:cpf", h.RemovePatient)
	}

	queue := r.Group("/queue")
	{
		queue.GET("", h.ListQueue)
		queue.GET("/board", h.Board)
	}

	r.GET("/reports/history", h.HistoryReport)
	r.GET("/symptoms", h.ListSymptoms)
}

// RegisterPatient creates a patient, or updates the queued one with the same
// CPF. It answers 201 on creation and 200 on update.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	patient, created, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(patient))
}

func (h *Handler) RemovePatient(c *gin.Context) {
	patient, err := h.service.Remove(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) SearchPatient(c *gin.Context) {
	q := model.SearchQuery{
		CPF:  c.Query("cpf"),
		Name: c.Query("name"),
	}
	switch strings.ToLower(c.DefaultQuery("mode", "linear")) {
	case "linear":
	case "binary":
		q.Binary = true
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("mode must be linear or binary"))
		return
	}

	result, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Board(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(board))
}

func (h *Handler) ListQueue(c *gin.Context) {
	report, err := h.service.ListQueue(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) HistoryReport(c *gin.Context) {
	report, err := h.service.HistoryReport(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) ListSymptoms(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Symptoms()))
}
