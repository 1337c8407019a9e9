package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imovelscan/leilao-api/internal/models"
	"github.com/sirupsen/logrus"
)

// workflowStartedSentinel is how the workflow engine signals a deferred
// response. It is an ad hoc external contract: there is no status code, the
// verbatim message is the only discriminant. The string must never leak past
// this client; callers see the two-case TriggerResult instead.
const workflowStartedSentinel = "Workflow was started"

// TriggerResult is the outcome of a trigger call: either the extraction
// completed synchronously (Raw holds the payload) or the workflow deferred it
// to the callback store (Deferred is true, Raw is nil).
type TriggerResult struct {
	Deferred bool
	Raw      json.RawMessage
}

// ExtractionClient issues the triggering request to the remote workflow engine.
type ExtractionClient struct {
	httpClient  *http.Client
	workflowURL string
	callbackURL string
	timeout     time.Duration
	logger      *logrus.Logger
}

// NewExtractionClient creates a new extraction client
func NewExtractionClient(workflowURL, callbackURL string, timeout time.Duration, logger *logrus.Logger) ExtractionClientInterface {
	return &ExtractionClient{
		httpClient:  &http.Client{Timeout: timeout},
		workflowURL: workflowURL,
		callbackURL: callbackURL,
		timeout:     timeout,
		logger:      logger,
	}
}

// Trigger POSTs the extraction request to the workflow endpoint and
// discriminates the response: the verbatim sentinel message means deferred,
// anything else parseable is an immediate payload.
func (c *ExtractionClient) Trigger(ctx context.Context, url string) (*TriggerResult, error) {
	reqBody := models.ExtractionRequest{
		URL:         url,
		Timestamp:   time.Now().Format(time.RFC3339),
		CallbackURL: c.callbackURL,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &models.ProtocolError{Operation: "disparo do workflow", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.workflowURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &models.NetworkError{Operation: "disparo do workflow", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"url":      url,
		"endpoint": c.workflowURL,
	}).Info("Disparando workflow de extração")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &models.TimeoutError{Operation: "disparo do workflow", Timeout: c.timeout.String()}
		}
		return nil, &models.NetworkError{Operation: "disparo do workflow", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.HTTPError{StatusCode: resp.StatusCode, URL: c.workflowURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Operation: "leitura da resposta do workflow", Err: err}
	}

	if !json.Valid(body) {
		return nil, &models.ProtocolError{
			Operation: "disparo do workflow",
			Err:       fmt.Errorf("corpo não é JSON válido"),
		}
	}

	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && probe.Message == workflowStartedSentinel {
		c.logger.WithField("url", url).Info("Workflow iniciado, resultado virá por callback")
		return &TriggerResult{Deferred: true}, nil
	}

	c.logger.WithField("url", url).Info("Workflow respondeu com dados imediatos")
	return &TriggerResult{Raw: json.RawMessage(body)}, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
