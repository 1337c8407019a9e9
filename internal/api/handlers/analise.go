package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imovelscan/leilao-api/internal/metrics"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/imovelscan/leilao-api/internal/services"
	"github.com/imovelscan/leilao-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// AnaliseHandler exposes the extraction orchestration over HTTP.
type AnaliseHandler struct {
	analysis services.AnalysisServiceInterface
	cache    services.CacheServiceInterface
	logger   *logrus.Logger
}

// NewAnaliseHandler creates a new analysis handler
func NewAnaliseHandler(analysis services.AnalysisServiceInterface, cache services.CacheServiceInterface, logger *logrus.Logger) *AnaliseHandler {
	return &AnaliseHandler{
		analysis: analysis,
		cache:    cache,
		logger:   logger,
	}
}

// AnaliseRequest is the body accepted by the analysis endpoint.
type AnaliseRequest struct {
	URL string `json:"url" binding:"required" example:"https://www.leilaoimovel.com.br/imovel/123"`
}

// Analisar handles a property analysis request
// @Summary Analyze an auction listing
// @Description Trigger the extraction workflow for a listing URL and return the normalized property data
// @Tags Análises
// @Accept json
// @Produce json
// @Param request body AnaliseRequest true "Listing URL"
// @Success 200 {object} models.ImovelNormalizado
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /analises [post]
func (h *AnaliseHandler) Analisar(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var req AnaliseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Requisição inválida",
			Message:   "O corpo deve conter o campo url",
			Code:      "INVALID_BODY",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	// The validator gates everything: an invalid URL never reaches the
	// workflow engine.
	if msg := utils.DescribeURLError(req.URL); msg != "" || !utils.IsValidPropertyURL(req.URL) {
		if msg == "" {
			msg = utils.MsgURLForaDoPadrao
		}
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"url":        req.URL,
		}).Warn("URL de imóvel inválida")

		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "URL inválida",
			Message:   msg,
			Code:      "INVALID_URL",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        req.URL,
	}).Info("Iniciando análise de imóvel")

	result, err := h.analysis.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, req.URL, err, requestID, start)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        req.URL,
		"duration":   time.Since(start),
	}).Info("Análise de imóvel concluída")

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, result)
}

// Consultar handles a cache-only read of a previous analysis
// @Summary Read a cached analysis
// @Description Serve an already-fetched analysis from cache; a fresh analysis always bypasses this
// @Tags Análises
// @Produce json
// @Param url query string true "Listing URL"
// @Success 200 {object} models.ImovelNormalizado
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /analises [get]
func (h *AnaliseHandler) Consultar(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Parâmetro ausente",
			Message:   "Informe o parâmetro url",
			Code:      "MISSING_URL",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	cached, ok := h.cache.Get(c.Request.Context(), services.CacheKey(url))
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Análise não encontrada",
			Message:   "Nenhuma análise em cache para esta URL",
			Code:      "NOT_CACHED",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()

	var imovel models.ImovelNormalizado
	if err := json.Unmarshal([]byte(cached), &imovel); err != nil {
		h.logger.WithError(err).Warn("Entrada de cache corrompida, descartando")
		_ = h.cache.Delete(c.Request.Context(), services.CacheKey(url))
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Análise não encontrada",
			Message:   "Nenhuma análise em cache para esta URL",
			Code:      "NOT_CACHED",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	imovel.Cache = true
	c.Header("X-Cache", "HIT")
	c.JSON(http.StatusOK, imovel)
}

func (h *AnaliseHandler) respondError(c *gin.Context, url string, err error, requestID string, start time.Time) {
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
		"error":      err.Error(),
		"duration":   time.Since(start),
	}).Error("Análise de imóvel falhou")

	var validationErr *models.ValidationError
	var protocolErr *models.ProtocolError
	var pollingErr *models.PollingTimeoutError
	var timeoutErr *models.TimeoutError
	var httpErr *models.HTTPError
	var networkErr *models.NetworkError

	switch {
	case errors.As(err, &validationErr) && validationErr.Field == "url":
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "URL inválida",
			Message:   validationErr.Message,
			Code:      "INVALID_URL",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.As(err, &protocolErr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:     "Dados inválidos",
			Message:   "Dados do imóvel inválidos ou incompletos",
			Code:      "INVALID_DATA",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.As(err, &pollingErr), errors.As(err, &timeoutErr):
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:     "Tempo limite excedido",
			Message:   "Tempo limite excedido. Tente novamente em instantes.",
			Code:      "TIMEOUT",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.As(err, &httpErr), errors.As(err, &networkErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "Serviço de extração indisponível",
			Message:   "Não foi possível falar com o serviço de extração. Tente novamente.",
			Code:      "UPSTREAM_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.Is(err, services.ErrSuperseded):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:     "Análise substituída",
			Message:   "Uma nova análise substituiu esta requisição",
			Code:      "SUPERSEDED",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		// A normalization ValidationError on the payload lands here too: the
		// user sees a data-quality failure, not raw parse diagnostics.
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:     "Dados inválidos",
			Message:   "Dados do imóvel inválidos ou incompletos",
			Code:      "INVALID_DATA",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	}
}
