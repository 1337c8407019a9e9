package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CallbackStoreService holds extraction results POSTed by the workflow engine,
// keyed by the original listing URL. Reads delete: a payload is delivered to
// exactly one poll, subsequent reads find nothing. Redis GETDEL gives this
// atomically; the in-memory fallback serializes with a mutex.
//
// Known limitation, inherited from the workflow contract: two POSTs for the
// same URL before any GET silently overwrite each other, with no conflict
// detection.
type CallbackStoreService struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger

	memStore map[string]callbackItem
	memMutex sync.Mutex
}

type callbackItem struct {
	payload   string
	expiresAt time.Time
}

// NewCallbackStoreService creates a new callback store
func NewCallbackStoreService(client *redis.Client, ttl time.Duration, logger *logrus.Logger) CallbackStoreInterface {
	return &CallbackStoreService{
		client:   client,
		ttl:      ttl,
		logger:   logger,
		memStore: make(map[string]callbackItem),
	}
}

// Save stores payload under url, overwriting any previous payload for it.
func (s *CallbackStoreService) Save(ctx context.Context, url string, payload string) error {
	if s.client != nil {
		err := s.client.Set(ctx, callbackKey(url), payload, s.ttl).Err()
		if err == nil {
			s.logger.WithField("url", url).Debug("Callback armazenado (Redis)")
			return nil
		}
		s.logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err.Error(),
		}).Warn("Redis set error, falling back to memory store")
	}

	s.memMutex.Lock()
	s.memStore[url] = callbackItem{
		payload:   payload,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.memMutex.Unlock()

	s.logger.WithField("url", url).Debug("Callback armazenado (memória)")
	return nil
}

// Take retrieves and deletes the payload stored under url.
func (s *CallbackStoreService) Take(ctx context.Context, url string) (string, bool) {
	if s.client != nil {
		val, err := s.client.GetDel(ctx, callbackKey(url)).Result()
		if err == nil {
			s.logger.WithField("url", url).Debug("Callback entregue (Redis)")
			return val, true
		}
		if err != redis.Nil {
			s.logger.WithFields(logrus.Fields{
				"url":   url,
				"error": err.Error(),
			}).Warn("Redis getdel error, falling back to memory store")
		} else {
			// Redis is authoritative when reachable; the memory store only
			// holds payloads written while Redis was down.
			s.memMutex.Lock()
			item, exists := s.memStore[url]
			delete(s.memStore, url)
			s.memMutex.Unlock()
			if exists && time.Now().Before(item.expiresAt) {
				return item.payload, true
			}
			return "", false
		}
	}

	s.memMutex.Lock()
	item, exists := s.memStore[url]
	delete(s.memStore, url)
	s.memMutex.Unlock()

	if !exists || time.Now().After(item.expiresAt) {
		return "", false
	}

	s.logger.WithField("url", url).Debug("Callback entregue (memória)")
	return item.payload, true
}

// Health returns callback store health status
func (s *CallbackStoreService) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	s.memMutex.Lock()
	pending := len(s.memStore)
	s.memMutex.Unlock()

	health["memory"] = map[string]interface{}{
		"status":  "healthy",
		"pending": pending,
	}

	return health
}

func callbackKey(url string) string {
	return "callback:" + url
}
