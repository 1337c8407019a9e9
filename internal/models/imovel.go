package models

import (
	"time"
)

// ExtractionRequest is the body POSTed to the workflow engine to start an
// extraction. Immutable after creation, one per user-initiated attempt.
type ExtractionRequest struct {
	URL         string `json:"url"`
	Timestamp   string `json:"timestamp"`
	CallbackURL string `json:"callbackUrl"`
}

// DocumentoInfo is an edital, matrícula or similar attachment of the listing.
// A document is only kept when url, type and name are all non-empty strings.
type DocumentoInfo struct {
	URL  string `json:"url"`
	Tipo string `json:"tipo"`
	Nome string `json:"nome"`
}

// LeilaoInfo is one auction round (praça) with its date and bid.
type LeilaoInfo struct {
	Data  string `json:"data"`
	Lance string `json:"lance"`
}

// ImovelNormalizado is the canonical post-validation shape handed to the
// rendering layer. Every field is always present after normalization: absence
// of an optional upstream value is encoded as a sentinel fallback string,
// never by omission. Monetary fields are formatted display strings.
type ImovelNormalizado struct {
	URL            string          `json:"url"`
	TipoImovel     string          `json:"tipo_imovel" example:"Apartamento"`
	TipoLeilao     string          `json:"tipo_leilao" example:"Judicial"`
	LanceMinimo    string          `json:"lance_minimo" example:"R$ 245.000,00"`
	ValorAvaliacao string          `json:"valor_avaliacao" example:"R$ 320.000,00"`
	Endereco       string          `json:"endereco" example:"Rua Exemplo, 123 - São Paulo/SP"`
	DataLeilao     string          `json:"data_leilao,omitempty"`
	Descricao      string          `json:"descricao"`
	Imagens        []string        `json:"imagens"`
	Documentos     []DocumentoInfo `json:"documentos"`
	Leiloes        []LeilaoInfo    `json:"leiloes"`
	ExtraidoEm     time.Time       `json:"extraido_em"`
	Cache          bool            `json:"cache"`
}

// AnalysisEventType enumerates the events an extraction attempt emits.
type AnalysisEventType string

const (
	// EventProgress carries a synthetic 0-100 percentage advanced on a fixed
	// timer, decoupled from actual poll ticks.
	EventProgress AnalysisEventType = "progress"
	// EventReady is the success terminal event, carrying the normalized data.
	EventReady AnalysisEventType = "ready"
	// EventFailed is the failure terminal event.
	EventFailed AnalysisEventType = "failed"
)

// AnalysisEvent is one item of an attempt's event stream. An attempt emits
// zero or more progress events followed by exactly one terminal event, unless
// it is superseded, in which case the stream closes with no terminal event.
type AnalysisEvent struct {
	Type     AnalysisEventType  `json:"type"`
	Progress int                `json:"progress,omitempty"`
	Data     *ImovelNormalizado `json:"data,omitempty"`
	Err      error              `json:"-"`
}
