package models

import (
	"encoding/json"
	"time"
)

// Consulta is one stored inquiry: the URL a user analyzed and the normalized
// result document produced for it.
type Consulta struct {
	ID           string          `json:"id" example:"7b0c2e8e-64f4-4f22-9a61-0f2f17f0a001"`
	URL          string          `json:"url" example:"https://www.leilaoimovel.com.br/imovel/123"`
	Dados        json.RawMessage `json:"dados"`
	CriadaEm     time.Time       `json:"criada_em"`
	AtualizadaEm time.Time       `json:"atualizada_em"`
}

// ConsultaRequest is the body accepted by the consulta creation endpoint.
type ConsultaRequest struct {
	URL   string          `json:"url" binding:"required"`
	Dados json.RawMessage `json:"dados" binding:"required"`
}
