package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imovelscan/leilao-api/internal/services"
	"github.com/sirupsen/logrus"
)

// CallbackHandler is the HTTP surface of the callback store: the workflow
// engine POSTs extraction results here and the polling coordinator reads them
// back. Reads delete, so each stored payload is delivered at most once.
type CallbackHandler struct {
	store  services.CallbackStoreInterface
	logger *logrus.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(store services.CallbackStoreInterface, logger *logrus.Logger) *CallbackHandler {
	return &CallbackHandler{
		store:  store,
		logger: logger,
	}
}

// Receber stores an extraction result POSTed by the workflow engine
// @Summary Store an extraction callback
// @Description Accept a JSON payload keyed by its url field
// @Tags Callback
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /extraction-callback [post]
func (h *CallbackHandler) Receber(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição ilegível"})
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo não é JSON válido"})
		return
	}

	url, ok := payload["url"].(string)
	if !ok || url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campo url é obrigatório"})
		return
	}

	if err := h.store.Save(c.Request.Context(), url, string(body)); err != nil {
		h.logger.WithError(err).Error("Falha ao armazenar callback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao armazenar dados"})
		return
	}

	h.logger.WithField("url", url).Info("Callback de extração recebido")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dados armazenados",
		"url":     url,
	})
}

// Entregar returns and deletes the payload stored for a URL
// @Summary Read an extraction callback
// @Description Return the stored payload for url and delete it (at-most-once delivery)
// @Tags Callback
// @Produce json
// @Param url query string true "Listing URL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /extraction-callback [get]
func (h *CallbackHandler) Entregar(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro url é obrigatório"})
		return
	}

	payload, ok := h.store.Take(c.Request.Context(), url)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dados não encontrados"})
		return
	}

	h.logger.WithField("url", url).Info("Callback de extração entregue")
	c.Data(http.StatusOK, "application/json", []byte(payload))
}
