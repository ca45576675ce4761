package monitor

import (
	"context"
	"errors"
	"time"

	"taskalive/internals/modules/account"
	"taskalive/internals/modules/plan"
	"taskalive/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Store interface {
	Create(ctx context.Context, cmd CreateMonitorCmd, pingToken string) (uuid.UUID, error)
	Get(ctx context.Context, accountID, monitorID uuid.UUID) (Monitor, error)
	GetAll(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]Monitor, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int32, error)
	Update(ctx context.Context, accountID, monitorID uuid.UUID, cmd UpdateMonitorCmd) error
	SetPaused(ctx context.Context, accountID, monitorID uuid.UUID, paused bool) error
	Delete(ctx context.Context, accountID, monitorID uuid.UUID) error
}

type AccountSource interface {
	GetByID(ctx context.Context, accountID uuid.UUID) (account.Account, error)
}

// TokenCache invalidation keeps the ping ingest fast path from serving a
// deleted or reconfigured monitor for a stale TTL window.
type TokenCache interface {
	DelMonitorRef(ctx context.Context, token string) error
}

type PingHistory interface {
	ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit, offset int32) ([]PingHistoryItem, error)
}

type AlertHistory interface {
	ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit, offset int32) ([]AlertHistoryItem, error)
}

type Service struct {
	store    Store
	accounts AccountSource
	cache    TokenCache
	pings    PingHistory
	alerts   AlertHistory
	logger   *zerolog.Logger
}

func NewService(
	store Store,
	accounts AccountSource,
	cache TokenCache,
	pings PingHistory,
	alerts AlertHistory,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		cache:    cache,
		pings:    pings,
		alerts:   alerts,
		logger:   logger,
	}
}

type CreateMonitorResult struct {
	MonitorID uuid.UUID
	PingToken string
}

func (s *Service) CreateMonitor(ctx context.Context, cmd CreateMonitorCmd) (CreateMonitorResult, error) {
	const op = "service.monitor.create"

	acct, err := s.accounts.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return CreateMonitorResult{}, err
	}

	count, err := s.store.CountByAccount(ctx, cmd.AccountID)
	if err != nil {
		return CreateMonitorResult{}, err
	}
	if !plan.CanCreateMonitor(acct.Plan, count) {
		return CreateMonitorResult{}, apperror.New(apperror.Forbidden, op,
			errors.New("plan monitor limit reached")).
			WithMessage("monitor limit reached for your plan")
	}

	token := uuid.NewString()
	id, err := s.store.Create(ctx, cmd, token)
	if err != nil {
		return CreateMonitorResult{}, err
	}

	return CreateMonitorResult{MonitorID: id, PingToken: token}, nil
}

func (s *Service) GetMonitor(ctx context.Context, accountID, monitorID uuid.UUID) (Monitor, error) {
	return s.store.Get(ctx, accountID, monitorID)
}

func (s *Service) GetAllMonitors(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]Monitor, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetAll(ctx, accountID, limit, offset)
}

func (s *Service) UpdateMonitor(ctx context.Context, accountID, monitorID uuid.UUID, cmd UpdateMonitorCmd) (Monitor, error) {
	m, err := s.store.Get(ctx, accountID, monitorID)
	if err != nil {
		return Monitor{}, err
	}

	if err := s.store.Update(ctx, accountID, monitorID, cmd); err != nil {
		return Monitor{}, err
	}

	// interval may have changed, drop the cached token resolution
	s.invalidateToken(ctx, m.PingToken)

	return s.store.Get(ctx, accountID, monitorID)
}

// SetPaused flips the pause flag only. The stored deadline is left
// untouched: a monitor resumed after its grace window elapsed can fail on
// the very next sweep tick.
func (s *Service) SetPaused(ctx context.Context, accountID, monitorID uuid.UUID, paused bool) error {
	return s.store.SetPaused(ctx, accountID, monitorID, paused)
}

func (s *Service) DeleteMonitor(ctx context.Context, accountID, monitorID uuid.UUID) error {
	m, err := s.store.Get(ctx, accountID, monitorID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, accountID, monitorID); err != nil {
		return err
	}

	s.invalidateToken(ctx, m.PingToken)
	return nil
}

func (s *Service) ListPings(ctx context.Context, accountID, monitorID uuid.UUID, limit, offset int32) ([]PingHistoryItem, error) {
	if _, err := s.store.Get(ctx, accountID, monitorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.pings.ListByMonitor(ctx, monitorID, limit, offset)
}

func (s *Service) ListAlerts(ctx context.Context, accountID, monitorID uuid.UUID, limit, offset int32) ([]AlertHistoryItem, error) {
	if _, err := s.store.Get(ctx, accountID, monitorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.alerts.ListByMonitor(ctx, monitorID, limit, offset)
}

func (s *Service) invalidateToken(ctx context.Context, token string) {
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.cache.DelMonitorRef(cacheCtx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to invalidate token cache")
	}
}
