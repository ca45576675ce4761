package ping

import (
	"context"
	"errors"
	"time"

	"taskalive/pkg/apperror"
	"taskalive/pkg/redisstore"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxMessageBytes caps the optional free-text annotation. Basic size
// check only, no content validation.
const maxMessageBytes = 2048

type Store interface {
	ResolveToken(ctx context.Context, token string) (redisstore.MonitorRef, error)
	RecordPing(ctx context.Context, monitorID uuid.UUID, now, nextPing time.Time, message, sourceIP string) error
}

type TokenCache interface {
	GetMonitorRef(ctx context.Context, token string) (*redisstore.MonitorRef, error)
	SetMonitorRef(ctx context.Context, token string, ref redisstore.MonitorRef, ttl time.Duration) error
}

type Service struct {
	store    Store
	cache    TokenCache
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewService(store Store, cache TokenCache, cacheTTL time.Duration, logger *zerolog.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Ingest records a heartbeat: append the signal, set the monitor HEALTHY
// and push the deadline to now + interval. The recovery alert, if one is
// owed, is the sweep's job so it can be deduplicated against the ledger.
func (s *Service) Ingest(ctx context.Context, token, message, sourceIP string) (IngestResult, error) {
	const op = "service.ping.ingest"

	if token == "" {
		return IngestResult{}, apperror.New(apperror.NotFound, op, errors.New("empty token")).
			WithMessage("monitor not found")
	}
	if len(message) > maxMessageBytes {
		return IngestResult{}, apperror.New(apperror.InvalidInput, op, errors.New("message too large")).
			WithMessage("message too large")
	}

	ref, err := s.resolve(ctx, token)
	if err != nil {
		return IngestResult{}, err
	}

	now := time.Now().UTC()
	nextPing := now.Add(time.Duration(ref.IntervalSec) * time.Second)

	if err := s.store.RecordPing(ctx, ref.MonitorID, now, nextPing, message, sourceIP); err != nil {
		return IngestResult{}, err
	}

	return IngestResult{NextPing: nextPing}, nil
}

func (s *Service) resolve(ctx context.Context, token string) (redisstore.MonitorRef, error) {
	cached, err := s.cache.GetMonitorRef(ctx, token)
	if err != nil {
		// cache trouble is not a reason to drop a heartbeat
		s.logger.Error().Err(err).Msg("token cache read failed, falling back to db")
	}
	if cached != nil {
		return *cached, nil
	}

	ref, err := s.store.ResolveToken(ctx, token)
	if err != nil {
		return redisstore.MonitorRef{}, err
	}

	if err := s.cache.SetMonitorRef(ctx, token, ref, s.cacheTTL); err != nil {
		s.logger.Error().Err(err).Msg("token cache write failed")
	}
	return ref, nil
}
