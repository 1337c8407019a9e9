package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/imovelscan/leilao-api/internal/repository"
	"github.com/sirupsen/logrus"
)

// ConsultaHandler handles CRUD over stored consulta records.
type ConsultaHandler struct {
	repo   repository.ConsultaRepository
	logger *logrus.Logger
}

// NewConsultaHandler creates a new consulta handler. repo may be nil when no
// database is configured; every endpoint then answers 503.
func NewConsultaHandler(repo repository.ConsultaRepository, logger *logrus.Logger) *ConsultaHandler {
	return &ConsultaHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *ConsultaHandler) unavailable(c *gin.Context) bool {
	if h.repo != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error:     "Persistência indisponível",
		Message:   "O serviço de consultas está temporariamente indisponível",
		Code:      "STORAGE_UNAVAILABLE",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
	return true
}

// Criar creates a consulta record
// @Summary Create a consulta
// @Tags Consultas
// @Accept json
// @Produce json
// @Param request body models.ConsultaRequest true "Consulta payload"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /consultas [post]
func (h *ConsultaHandler) Criar(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	var req models.ConsultaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Requisição inválida",
			Message:   "O corpo deve conter url e dados",
			Code:      "INVALID_BODY",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	consulta := &models.Consulta{URL: req.URL, Dados: req.Dados}
	if err := h.repo.Create(c.Request.Context(), consulta); err != nil {
		h.logger.WithError(err).Error("Falha ao criar consulta")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Erro interno",
			Message:   "Não foi possível salvar a consulta",
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   "Consulta criada com sucesso",
		Data:      consulta,
		Timestamp: time.Now(),
	})
}

// Listar lists consulta records
// @Summary List consultas
// @Tags Consultas
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.APIResponse
// @Router /consultas [get]
func (h *ConsultaHandler) Listar(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	consultas, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Falha ao listar consultas")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Erro interno",
			Message:   "Não foi possível listar as consultas",
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Data:      consultas,
		Timestamp: time.Now(),
	})
}

// Buscar retrieves one consulta record
// @Summary Get a consulta
// @Tags Consultas
// @Produce json
// @Param id path string true "Consulta ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /consultas/{id} [get]
func (h *ConsultaHandler) Buscar(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	consulta, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrConsultaNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "Consulta não encontrada",
				Message:   "Nenhuma consulta com este identificador",
				Code:      "NOT_FOUND",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		h.logger.WithError(err).Error("Falha ao buscar consulta")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Erro interno",
			Message:   "Não foi possível buscar a consulta",
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Data:      consulta,
		Timestamp: time.Now(),
	})
}

// Atualizar replaces the stored document of a consulta
// @Summary Update a consulta
// @Tags Consultas
// @Accept json
// @Produce json
// @Param id path string true "Consulta ID"
// @Param request body models.ConsultaRequest true "New document"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /consultas/{id} [put]
func (h *ConsultaHandler) Atualizar(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	var req models.ConsultaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Requisição inválida",
			Message:   "O corpo deve conter url e dados",
			Code:      "INVALID_BODY",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if err := h.repo.Update(c.Request.Context(), c.Param("id"), req.Dados); err != nil {
		if errors.Is(err, repository.ErrConsultaNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "Consulta não encontrada",
				Message:   "Nenhuma consulta com este identificador",
				Code:      "NOT_FOUND",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		h.logger.WithError(err).Error("Falha ao atualizar consulta")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Erro interno",
			Message:   "Não foi possível atualizar a consulta",
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   "Consulta atualizada com sucesso",
		Timestamp: time.Now(),
	})
}

// Remover deletes a consulta record
// @Summary Delete a consulta
// @Tags Consultas
// @Produce json
// @Param id path string true "Consulta ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /consultas/{id} [delete]
func (h *ConsultaHandler) Remover(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrConsultaNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "Consulta não encontrada",
				Message:   "Nenhuma consulta com este identificador",
				Code:      "NOT_FOUND",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		h.logger.WithError(err).Error("Falha ao remover consulta")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Erro interno",
			Message:   "Não foi possível remover a consulta",
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   "Consulta removida com sucesso",
		Timestamp: time.Now(),
	})
}
