package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/imovelscan/leilao-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// FallbackNaoEspecificado is the sentinel shown for absent optional fields.
// Downstream consumers always see a defined value, never an omitted field.
const FallbackNaoEspecificado = "Não especificado"

// Normalizer validates a raw extraction payload against the expected shape and
// produces the canonical ImovelNormalizado consumed by the rendering layer.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logrus.Logger) NormalizerInterface {
	return &Normalizer{logger: logger}
}

// Normalize converts raw into the strict, fully-defaulted display shape.
// Structural violations (raw is not a JSON object) fail with ValidationError;
// malformed individual documents are silently dropped, never defaulted.
func (n *Normalizer) Normalize(url string, raw json.RawMessage) (*models.ImovelNormalizado, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return nil, &models.ValidationError{Message: "dados do imóvel não são um objeto JSON"}
	}

	imovel := &models.ImovelNormalizado{
		URL:            url,
		TipoImovel:     stringField(payload, "propertyType", FallbackNaoEspecificado),
		TipoLeilao:     stringField(payload, "auctionType", FallbackNaoEspecificado),
		LanceMinimo:    utils.FormatMonetaryField(stringField(payload, "minBid", ""), FallbackNaoEspecificado),
		ValorAvaliacao: utils.FormatMonetaryField(stringField(payload, "evaluatedValue", ""), FallbackNaoEspecificado),
		Endereco:       stringField(payload, "address", FallbackNaoEspecificado),
		DataLeilao:     stringField(payload, "auctionDate", ""),
		Descricao:      n.normalizeDescription(stringField(payload, "description", "")),
		Imagens:        stringSlice(payload["images"]),
		Documentos:     n.filterDocuments(payload["documents"]),
		Leiloes:        n.normalizeAuctions(payload["auctions"]),
		ExtraidoEm:     time.Now(),
	}

	return imovel, nil
}

// normalizeDescription reduces an HTML description to plain text. A payload
// without markup passes through as-is.
func (n *Normalizer) normalizeDescription(desc string) string {
	if desc == "" {
		return FallbackNaoEspecificado
	}
	if !strings.Contains(desc, "<") {
		return strings.TrimSpace(desc)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		n.logger.WithError(err).Debug("Falha ao interpretar HTML da descrição, mantendo texto bruto")
		return strings.TrimSpace(desc)
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return FallbackNaoEspecificado
	}
	return text
}

// filterDocuments keeps only documents carrying non-empty string url, type and
// name. Anything else is dropped from the array without defaulting.
func (n *Normalizer) filterDocuments(raw interface{}) []models.DocumentoInfo {
	docs := make([]models.DocumentoInfo, 0)

	items, ok := raw.([]interface{})
	if !ok {
		return docs
	}

	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		url, okURL := nonEmptyString(entry["url"])
		tipo, okTipo := nonEmptyString(entry["type"])
		nome, okNome := nonEmptyString(entry["name"])
		if !okURL || !okTipo || !okNome {
			n.logger.WithField("documento", entry).Debug("Documento descartado por campos ausentes")
			continue
		}
		docs = append(docs, models.DocumentoInfo{URL: url, Tipo: tipo, Nome: nome})
	}

	return docs
}

func (n *Normalizer) normalizeAuctions(raw interface{}) []models.LeilaoInfo {
	leiloes := make([]models.LeilaoInfo, 0)

	items, ok := raw.([]interface{})
	if !ok {
		return leiloes
	}

	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		data, _ := nonEmptyString(entry["date"])
		if data == "" {
			data = FallbackNaoEspecificado
		}
		lance := utils.FormatMonetaryField(coerceString(entry["bid"]), FallbackNaoEspecificado)
		leiloes = append(leiloes, models.LeilaoInfo{Data: data, Lance: lance})
	}

	return leiloes
}

// stringField reads a field that upstream may send as a string or a number.
func stringField(payload map[string]interface{}, key, fallback string) string {
	value := coerceString(payload[key])
	if value == "" {
		return fallback
	}
	return value
}

func coerceString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func nonEmptyString(v interface{}) (string, bool) {
	s, ok := v.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

func stringSlice(raw interface{}) []string {
	out := make([]string, 0)

	items, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := nonEmptyString(item); ok {
			out = append(out, s)
		}
	}
	return out
}
