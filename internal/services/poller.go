package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/imovelscan/leilao-api/internal/metrics"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/sirupsen/logrus"
)

// PollState is the lifecycle state of a polling run.
type PollState int32

const (
	StateIdle PollState = iota
	StatePolling
	StateSucceeded
	StateExhausted
	StateCancelled
)

func (s PollState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// PollingCoordinator drives the asynchronous completion path: after a deferred
// trigger response it queries the callback store once per tick until data
// appears, the attempt budget runs out, or the caller cancels. Ticks are
// strictly sequential; a new tick only starts after the previous round trip
// resolved, so the callback store never sees concurrent requests from one run.
type PollingCoordinator struct {
	httpClient  *http.Client
	callbackURL string
	interval    time.Duration
	maxAttempts int
	logger      *logrus.Logger

	state    atomic.Int32
	attempts atomic.Int32
}

// NewPollingCoordinator creates a coordinator for one polling run.
func NewPollingCoordinator(callbackURL string, interval time.Duration, maxAttempts int, logger *logrus.Logger) *PollingCoordinator {
	return &PollingCoordinator{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		callbackURL: callbackURL,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// State returns the current lifecycle state.
func (p *PollingCoordinator) State() PollState {
	return PollState(p.state.Load())
}

// Attempts returns how many ticks have run.
func (p *PollingCoordinator) Attempts() int {
	return int(p.attempts.Load())
}

// Poll queries the callback store for targetURL until data appears or the
// budget is exhausted. A transport failure during one tick is logged and
// counts as "not ready": a single bad tick never aborts the whole run.
func (p *PollingCoordinator) Poll(ctx context.Context, targetURL string) (json.RawMessage, error) {
	p.state.Store(int32(StatePolling))

	log := p.logger.WithFields(logrus.Fields{
		"url":          targetURL,
		"max_attempts": p.maxAttempts,
		"interval":     p.interval.String(),
	})
	log.Info("Iniciando polling do callback store")

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			p.state.Store(int32(StateCancelled))
			return nil, err
		}

		p.attempts.Store(int32(attempt))

		data, ready := p.tick(ctx, targetURL)
		if ready {
			p.state.Store(int32(StateSucceeded))
			log.WithField("attempt", attempt).Info("Dados recebidos do callback store")
			return data, nil
		}

		log.WithField("attempt", attempt).Debug("Dados ainda não disponíveis")

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			p.state.Store(int32(StateCancelled))
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	p.state.Store(int32(StateExhausted))
	log.Warn("Orçamento de polling esgotado sem resposta")
	return nil, &models.PollingTimeoutError{URL: targetURL, Attempts: p.maxAttempts}
}

// tick issues one GET against the callback store. ready is true only for a
// 200 response with a JSON content type and a valid JSON body.
func (p *PollingCoordinator) tick(ctx context.Context, targetURL string) (json.RawMessage, bool) {
	endpoint := p.callbackURL + "?url=" + url.QueryEscape(targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		p.logger.WithError(err).Warn("Falha ao montar requisição de polling")
		metrics.PollTicksTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Transient blip: swallowed at the tick level, counts toward the
		// budget but does not abort the run.
		p.logger.WithError(err).Warn("Tick de polling falhou")
		metrics.PollTicksTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.PollTicksTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		metrics.PollTicksTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || !json.Valid(body) {
		p.logger.WithError(err).Warn("Corpo inválido recebido do callback store")
		metrics.PollTicksTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.PollTicksTotal.WithLabelValues("hit").Inc()
	return json.RawMessage(body), true
}
