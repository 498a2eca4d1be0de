package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

// CheckHandler exposes the checker service over HTTP.
type CheckHandler struct {
	svc    checker.Service
	logger logging.Logger
}

func NewCheckHandler(svc checker.Service, logger logging.Logger) *CheckHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CheckHandler{svc: svc, logger: logger.Named("check_handler")}
}

// RegisterRoutes mounts the handler under rg, normally /api/v1.
func (h *CheckHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse", h.Parse)
	rg.POST("/check", h.Check)
	rg.POST("/check/async", h.CheckAsync)
	rg.POST("/check/batch", h.CheckBatch)
	rg.POST("/balance", h.Balance)

	subs := rg.Group("/submissions")
	subs.GET("", h.ListSubmissions)
	subs.GET("/stats", h.SubmissionStats)
	subs.GET("/:id", h.GetSubmission)
}

// Parse handles POST /parse.
func (h *CheckHandler) Parse(c *gin.Context) {
	var req types.ParseRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Parse(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// Check handles POST /check.
func (h *CheckHandler) Check(c *gin.Context) {
	var req types.CheckRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RequestID == "" {
		req.RequestID = middleware.GetRequestID(c)
	}
	result, err := h.svc.Check(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

type asyncAccepted struct {
	RequestID string `json:"request_id"`
}

// CheckAsync handles POST /check/async. The verdict is delivered as a
// check.completed event carrying the returned request ID.
func (h *CheckHandler) CheckAsync(c *gin.Context) {
	var req types.CheckRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RequestID == "" {
		req.RequestID = middleware.GetRequestID(c)
	}
	id, err := h.svc.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Debug("check queued", logging.String("request_id", id))
	respondOK(c, http.StatusAccepted, asyncAccepted{RequestID: id})
}

func (h *CheckHandler) CheckBatch(c *gin.Context) {
	var req types.BatchCheckRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.CheckBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

func (h *CheckHandler) Balance(c *gin.Context) {
	var req types.BalanceRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Balance(c.Request.Context(), req.Equation)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// ListSubmissions handles GET /submissions?limit=N, newest first.
func (h *CheckHandler) ListSubmissions(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	subs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, subs)
}

func (h *CheckHandler) GetSubmission(c *gin.Context) {
	sub, err := h.svc.Submission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, sub)
}

func (h *CheckHandler) SubmissionStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
