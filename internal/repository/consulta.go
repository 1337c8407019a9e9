// Package repository persists consulta records in PostgreSQL. Each record is
// a document row: the normalized analysis result lives in a JSONB column.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConsultaNotFound is returned when no record exists for the given id.
var ErrConsultaNotFound = errors.New("consulta não encontrada")

// ConsultaRepository defines the CRUD surface for consulta records.
type ConsultaRepository interface {
	Create(ctx context.Context, consulta *models.Consulta) error
	GetByID(ctx context.Context, id string) (*models.Consulta, error)
	List(ctx context.Context, limit, offset int) ([]models.Consulta, error)
	Update(ctx context.Context, id string, dados json.RawMessage) error
	Delete(ctx context.Context, id string) error

	// Record stores a fresh analysis result, satisfying the orchestrator's
	// ConsultaRecorder dependency.
	Record(ctx context.Context, url string, dados json.RawMessage) error
}

// PostgresConsultaRepository is the pgx-backed implementation.
type PostgresConsultaRepository struct {
	db *pgxpool.Pool
}

// NewConsultaRepository creates a repository over the given pool.
func NewConsultaRepository(db *pgxpool.Pool) *PostgresConsultaRepository {
	return &PostgresConsultaRepository{db: db}
}

// EnsureSchema creates the consultas table when it does not exist yet.
func (r *PostgresConsultaRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS consultas (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL,
			dados JSONB NOT NULL,
			criada_em TIMESTAMPTZ NOT NULL,
			atualizada_em TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_consultas_url ON consultas (url);
	`
	_, err := r.db.Exec(ctx, query)
	return err
}

// Create inserts a new consulta record.
func (r *PostgresConsultaRepository) Create(ctx context.Context, consulta *models.Consulta) error {
	if consulta.ID == "" {
		consulta.ID = uuid.New().String()
	}
	now := time.Now()
	consulta.CriadaEm = now
	consulta.AtualizadaEm = now

	query := `
		INSERT INTO consultas (id, url, dados, criada_em, atualizada_em)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db.Exec(ctx, query,
		consulta.ID,
		consulta.URL,
		consulta.Dados,
		consulta.CriadaEm,
		consulta.AtualizadaEm,
	)
	if err != nil {
		return fmt.Errorf("falha ao inserir consulta: %w", err)
	}
	return nil
}

// GetByID retrieves one consulta record.
func (r *PostgresConsultaRepository) GetByID(ctx context.Context, id string) (*models.Consulta, error) {
	query := `
		SELECT id, url, dados, criada_em, atualizada_em
		FROM consultas
		WHERE id = $1;
	`
	row := r.db.QueryRow(ctx, query, id)

	var consulta models.Consulta
	err := row.Scan(&consulta.ID, &consulta.URL, &consulta.Dados, &consulta.CriadaEm, &consulta.AtualizadaEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultaNotFound
		}
		return nil, err
	}

	return &consulta, nil
}

// List retrieves consulta records ordered by creation time, newest first.
func (r *PostgresConsultaRepository) List(ctx context.Context, limit, offset int) ([]models.Consulta, error) {
	query := `
		SELECT id, url, dados, criada_em, atualizada_em
		FROM consultas
		ORDER BY criada_em DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	consultas := make([]models.Consulta, 0)
	for rows.Next() {
		var consulta models.Consulta
		if err := rows.Scan(&consulta.ID, &consulta.URL, &consulta.Dados, &consulta.CriadaEm, &consulta.AtualizadaEm); err != nil {
			return nil, err
		}
		consultas = append(consultas, consulta)
	}

	return consultas, rows.Err()
}

// Update replaces the stored document of a consulta record.
func (r *PostgresConsultaRepository) Update(ctx context.Context, id string, dados json.RawMessage) error {
	query := `
		UPDATE consultas
		SET dados = $2, atualizada_em = $3
		WHERE id = $1;
	`
	tag, err := r.db.Exec(ctx, query, id, dados, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConsultaNotFound
	}
	return nil
}

// Delete removes a consulta record.
func (r *PostgresConsultaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM consultas WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConsultaNotFound
	}
	return nil
}

// Record stores a fresh analysis result as a new consulta.
func (r *PostgresConsultaRepository) Record(ctx context.Context, url string, dados json.RawMessage) error {
	return r.Create(ctx, &models.Consulta{URL: url, Dados: dados})
}
