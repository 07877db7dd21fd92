package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
	"github.com/yanqian/text-summarizer/internal/domain/textanalysis"
	"github.com/yanqian/text-summarizer/internal/infra/config"
	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

const maxTopKeywords = 100

// Handler wires the HTTP transport to domain services.
type Handler struct {
	summarizerSvc summarizer.Service
	analyzer      *textanalysis.Analyzer
	topKeywords   int
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, summarySvc summarizer.Service, analyzer *textanalysis.Analyzer, logger *slog.Logger) *Handler {
	return &Handler{
		summarizerSvc: summarySvc,
		analyzer:      analyzer,
		topKeywords:   cfg.Analysis.TopKeywords,
		logger:        logger.With("component", "http.handler"),
	}
}

type switchModelRequest struct {
	Model string `json:"model"`
}

type analysisRequest struct {
	Text string `json:"text"`
	TopK int    `json:"topK"`
}

type analysisResponse struct {
	Metrics  textanalysis.Metrics `json:"metrics"`
	Keywords []string             `json:"keywords"`
}

// Summarize runs the summarization pipeline. Failures keep the result envelope and
// choose the status from the failure code.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result := h.summarizerSvc.Summarize(c.Request.Context(), req)
	if !result.Success {
		c.JSON(statusForCode(result.Code), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListModels returns the registered models and the active one.
func (h *Handler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models": h.summarizerSvc.ListModels(),
		"active": h.summarizerSvc.ActiveModel(),
	})
}

// SwitchModel changes the process-wide active model.
func (h *Handler) SwitchModel(c *gin.Context) {
	var req switchModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "model cannot be empty", nil))
		return
	}

	if err := h.summarizerSvc.SwitchModel(c.Request.Context(), req.Model); err != nil {
		abortWithError(c, fromDomainError(err, "switch_failed"))
		return
	}
	h.logger.Info("model switched via api", "model", req.Model, "request_id", requestID(c))
	c.JSON(http.StatusOK, gin.H{"active": h.summarizerSvc.ActiveModel()})
}

// Analyze returns lexical metrics and top keywords for a text.
func (h *Handler) Analyze(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeEmptyInput, "text cannot be empty", nil))
		return
	}
	k := req.TopK
	if k <= 0 {
		k = h.topKeywords
	}
	if k > maxTopKeywords {
		k = maxTopKeywords
	}

	c.JSON(http.StatusOK, analysisResponse{
		Metrics:  h.analyzer.Metrics(req.Text),
		Keywords: h.analyzer.TopKeywords(req.Text, k),
	})
}

// Health reports liveness together with the active model.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": h.summarizerSvc.ActiveModel()})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
