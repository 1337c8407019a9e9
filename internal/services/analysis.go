package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/imovelscan/leilao-api/internal/config"
	"github.com/imovelscan/leilao-api/internal/metrics"
	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/imovelscan/leilao-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrSuperseded is returned by Analyze when a newer extraction attempt
// replaced the one being waited on. The superseded attempt leaves no result.
var ErrSuperseded = errors.New("análise substituída por uma tentativa mais recente")

// progressTick is how often the synthetic progress percentage advances. It is
// deliberately decoupled from poll ticks: both are best-effort UI feedback
// with no mutual ordering guarantee.
const progressTick = 800 * time.Millisecond

// ConsultaRecorder persists a successful analysis as an inquiry record.
type ConsultaRecorder interface {
	Record(ctx context.Context, url string, dados json.RawMessage) error
}

// Attempt is one user-initiated extraction attempt. Its event stream carries
// zero or more progress updates followed by exactly one terminal event; a
// superseded or cancelled attempt closes the stream with no terminal event,
// so a stale attempt never flickers results at the render layer.
type Attempt struct {
	ID  string
	URL string

	events     chan models.AnalysisEvent
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// Events returns the attempt's event stream.
func (a *Attempt) Events() <-chan models.AnalysisEvent {
	return a.events
}

// Cancel stops the attempt: no further poll ticks are scheduled and no
// terminal event fires. An HTTP round trip already in flight is left to
// complete and its result discarded.
func (a *Attempt) Cancel() {
	a.superseded.Store(true)
	a.cancel()
}

func (a *Attempt) emit(ev models.AnalysisEvent) {
	select {
	case a.events <- ev:
	default:
		// Consumer stopped draining; dropping feedback events is harmless.
	}
}

// AnalysisService coordinates validator, cache, retry-wrapped trigger, the
// polling coordinator and the normalizer into one attempt lifecycle.
type AnalysisService struct {
	cfg        config.ExtractionConfig
	cache      CacheServiceInterface
	client     ExtractionClientInterface
	normalizer NormalizerInterface
	newPoller  func() PollerInterface
	consultas  ConsultaRecorder
	logger     *logrus.Logger

	mu      sync.Mutex
	current *Attempt
}

// NewAnalysisService creates the orchestrator. consultas may be nil when no
// persistence is available; recording is best effort either way.
func NewAnalysisService(
	cfg config.ExtractionConfig,
	cache CacheServiceInterface,
	client ExtractionClientInterface,
	normalizer NormalizerInterface,
	newPoller func() PollerInterface,
	consultas ConsultaRecorder,
	logger *logrus.Logger,
) AnalysisServiceInterface {
	return &AnalysisService{
		cfg:        cfg,
		cache:      cache,
		client:     client,
		normalizer: normalizer,
		newPoller:  newPoller,
		consultas:  consultas,
		logger:     logger,
	}
}

// CacheKey is the result-cache key for a submitted URL. The URL is kept raw,
// not canonicalized: changing that would silently alter cache hit rates.
func CacheKey(url string) string {
	return "imovel:" + url
}

// Start begins an extraction attempt for url. Any attempt still in flight is
// superseded: its polling stops and its eventual result is discarded.
func (s *AnalysisService) Start(url string) *Attempt {
	ctx, cancel := context.WithCancel(context.Background())
	attempt := &Attempt{
		ID:     uuid.New().String(),
		URL:    url,
		events: make(chan models.AnalysisEvent, 256),
		cancel: cancel,
	}

	s.mu.Lock()
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = attempt
	s.mu.Unlock()

	go s.run(ctx, attempt)
	return attempt
}

// Analyze runs an attempt synchronously, translating the event stream into a
// plain result. Used by the HTTP handler.
func (s *AnalysisService) Analyze(ctx context.Context, url string) (*models.ImovelNormalizado, error) {
	attempt := s.Start(url)

	for {
		select {
		case <-ctx.Done():
			attempt.Cancel()
			return nil, ctx.Err()
		case ev, ok := <-attempt.events:
			if !ok {
				return nil, ErrSuperseded
			}
			switch ev.Type {
			case models.EventReady:
				return ev.Data, nil
			case models.EventFailed:
				return nil, ev.Err
			}
		}
	}
}

// Health returns service health status
func (s *AnalysisService) Health() map[string]interface{} {
	s.mu.Lock()
	var inFlight string
	if s.current != nil && !s.current.superseded.Load() {
		inFlight = s.current.URL
	}
	s.mu.Unlock()

	return map[string]interface{}{
		"status":    "healthy",
		"in_flight": inFlight,
	}
}

func (s *AnalysisService) run(ctx context.Context, attempt *Attempt) {
	defer close(attempt.events)
	start := time.Now()

	log := s.logger.WithFields(logrus.Fields{
		"attempt_id": attempt.ID,
		"url":        attempt.URL,
	})

	done := make(chan struct{})
	go s.advanceProgress(ctx, attempt, done)

	data, outcome, err := s.execute(ctx, attempt.URL, log)
	close(done)

	metrics.ExtractionsTotal.WithLabelValues(outcome).Inc()
	metrics.ExtractionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if attempt.superseded.Load() || ctx.Err() != nil {
		// Superseded or cancelled: the stream closes without a terminal
		// event and any late result is discarded.
		log.Info("Tentativa cancelada ou substituída, resultado descartado")
		return
	}

	if err != nil {
		log.WithError(err).Error("Análise de imóvel falhou")
		attempt.emit(models.AnalysisEvent{Type: models.EventFailed, Err: err})
		return
	}

	attempt.emit(models.AnalysisEvent{Type: models.EventProgress, Progress: 100})
	attempt.emit(models.AnalysisEvent{Type: models.EventReady, Data: data})
	log.WithField("duration", time.Since(start)).Info("Análise de imóvel concluída")
}

// advanceProgress feeds the UI a synthetic 0-100 percentage on a fixed timer,
// holding at 95 until the terminal event resolves.
func (s *AnalysisService) advanceProgress(ctx context.Context, attempt *Attempt, done <-chan struct{}) {
	ticker := time.NewTicker(progressTick)
	defer ticker.Stop()

	progress := 0
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			progress += 7
			if progress > 95 {
				progress = 95
			}
			attempt.emit(models.AnalysisEvent{Type: models.EventProgress, Progress: progress})
		}
	}
}

// execute runs one attempt end to end and reports the metrics outcome label.
func (s *AnalysisService) execute(ctx context.Context, url string, log *logrus.Entry) (*models.ImovelNormalizado, string, error) {
	if !utils.IsValidPropertyURL(url) {
		msg := utils.DescribeURLError(url)
		if msg == "" {
			msg = utils.MsgURLForaDoPadrao
		}
		return nil, "failed", &models.ValidationError{Field: "url", Message: msg}
	}

	// Explicit user action always fetches fresh: the cache only serves repeat
	// reads of already-fetched data, never a new analysis request.
	if err := s.cache.Delete(ctx, CacheKey(url)); err != nil {
		log.WithError(err).Warn("Falha ao invalidar cache antes da extração")
	}

	trigger, err := WithRetryIf(ctx, func() (*TriggerResult, error) {
		return s.client.Trigger(ctx, url)
	}, s.cfg.MaxRetries, s.cfg.RetryDelay, isRetryableTriggerError)
	if err != nil {
		return nil, "failed", err
	}

	raw := trigger.Raw
	outcome := "immediate"
	if trigger.Deferred {
		outcome = "deferred"
		raw, err = s.newPoller().Poll(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "cancelled", err
			}
			return nil, "failed", err
		}
	}

	data, err := s.normalizer.Normalize(url, raw)
	if err != nil {
		return nil, "failed", err
	}

	s.storeResult(ctx, url, data, log)
	return data, outcome, nil
}

func (s *AnalysisService) storeResult(ctx context.Context, url string, data *models.ImovelNormalizado, log *logrus.Entry) {
	encoded, err := json.Marshal(data)
	if err != nil {
		log.WithError(err).Warn("Falha ao serializar resultado para cache")
		return
	}

	if err := s.cache.Set(ctx, CacheKey(url), string(encoded)); err != nil {
		log.WithError(err).Warn("Falha ao armazenar resultado no cache")
	}

	if s.consultas != nil {
		if err := s.consultas.Record(ctx, url, json.RawMessage(encoded)); err != nil {
			log.WithError(err).Warn("Falha ao registrar consulta")
		}
	}
}

// isRetryableTriggerError: transport and upstream-status failures may heal on
// retry; a malformed response or invalid payload will not become well-formed
// by repeating the call.
func isRetryableTriggerError(err error) bool {
	var netErr *models.NetworkError
	var httpErr *models.HTTPError
	var timeoutErr *models.TimeoutError
	return errors.As(err, &netErr) || errors.As(err, &httpErr) || errors.As(err, &timeoutErr)
}
