package monitor

import (
	"context"
	"errors"
	"testing"

	"taskalive/internals/modules/account"
	"taskalive/internals/modules/plan"
	"taskalive/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitorStore struct {
	monitors map[uuid.UUID]Monitor
	count    int32

	created []CreateMonitorCmd
	updated []UpdateMonitorCmd
	deleted []uuid.UUID
}

func newFakeMonitorStore() *fakeMonitorStore {
	return &fakeMonitorStore{monitors: make(map[uuid.UUID]Monitor)}
}

func (f *fakeMonitorStore) Create(_ context.Context, cmd CreateMonitorCmd, pingToken string) (uuid.UUID, error) {
	id := uuid.New()
	f.created = append(f.created, cmd)
	f.monitors[id] = Monitor{
		ID:          id,
		AccountID:   cmd.AccountID,
		Name:        cmd.Name,
		PingToken:   pingToken,
		IntervalSec: cmd.IntervalSec,
		GraceSec:    cmd.GraceSec,
		Status:      StatusHealthy,
	}
	f.count++
	return id, nil
}

func (f *fakeMonitorStore) Get(_ context.Context, accountID, monitorID uuid.UUID) (Monitor, error) {
	m, ok := f.monitors[monitorID]
	if !ok || m.AccountID != accountID {
		return Monitor{}, apperror.New(apperror.NotFound, "repository.monitor.get",
			errors.New("no rows")).WithMessage("monitor not found")
	}
	return m, nil
}

func (f *fakeMonitorStore) GetAll(_ context.Context, accountID uuid.UUID, limit, offset int32) ([]Monitor, error) {
	var out []Monitor
	for _, m := range f.monitors {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMonitorStore) CountByAccount(context.Context, uuid.UUID) (int32, error) {
	return f.count, nil
}

func (f *fakeMonitorStore) Update(_ context.Context, _, monitorID uuid.UUID, cmd UpdateMonitorCmd) error {
	f.updated = append(f.updated, cmd)
	m := f.monitors[monitorID]
	if cmd.Name != nil {
		m.Name = *cmd.Name
	}
	if cmd.IntervalSec != nil {
		m.IntervalSec = *cmd.IntervalSec
	}
	f.monitors[monitorID] = m
	return nil
}

func (f *fakeMonitorStore) SetPaused(_ context.Context, _, monitorID uuid.UUID, paused bool) error {
	m := f.monitors[monitorID]
	m.Paused = paused
	f.monitors[monitorID] = m
	return nil
}

func (f *fakeMonitorStore) Delete(_ context.Context, _, monitorID uuid.UUID) error {
	f.deleted = append(f.deleted, monitorID)
	delete(f.monitors, monitorID)
	f.count--
	return nil
}

type fakeAccounts struct {
	acct account.Account
}

func (f *fakeAccounts) GetByID(context.Context, uuid.UUID) (account.Account, error) {
	return f.acct, nil
}

type fakeCacheInvalidator struct {
	deleted []string
}

func (f *fakeCacheInvalidator) DelMonitorRef(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakePingHistory struct{}

func (fakePingHistory) ListByMonitor(context.Context, uuid.UUID, int32, int32) ([]PingHistoryItem, error) {
	return []PingHistoryItem{}, nil
}

type fakeAlertHistory struct{}

func (fakeAlertHistory) ListByMonitor(context.Context, uuid.UUID, int32, int32) ([]AlertHistoryItem, error) {
	return []AlertHistoryItem{}, nil
}

func newMonitorService(store *fakeMonitorStore, tier plan.Tier, cache *fakeCacheInvalidator) *Service {
	logger := zerolog.Nop()
	accounts := &fakeAccounts{acct: account.Account{
		ID:    uuid.New(),
		Email: "owner@example.com",
		Plan:  tier,
	}}
	return NewService(store, accounts, cache, fakePingHistory{}, fakeAlertHistory{}, &logger)
}

func TestCreateMonitorIssuesToken(t *testing.T) {
	store := newFakeMonitorStore()
	svc := newMonitorService(store, plan.Free, &fakeCacheInvalidator{})

	res, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   uuid.New(),
		Name:        "db-backup",
		IntervalSec: 3600,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.MonitorID)
	assert.NotEmpty(t, res.PingToken)

	// every create gets a fresh token
	res2, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   uuid.New(),
		Name:        "cert-renewal",
		IntervalSec: 86400,
	})
	require.NoError(t, err)
	assert.NotEqual(t, res.PingToken, res2.PingToken)
}

func TestCreateMonitorEnforcesPlanLimit(t *testing.T) {
	store := newFakeMonitorStore()
	svc := newMonitorService(store, plan.Free, &fakeCacheInvalidator{})

	accountID := uuid.New()
	for i := 0; i < 5; i++ {
		_, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
			AccountID:   accountID,
			Name:        "job",
			IntervalSec: 60,
		})
		require.NoError(t, err)
	}

	_, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   accountID,
		Name:        "one-too-many",
		IntervalSec: 60,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.Forbidden))
	assert.Len(t, store.created, 5)
}

func TestCreateMonitorEnterpriseUnlimited(t *testing.T) {
	store := newFakeMonitorStore()
	store.count = 10_000
	svc := newMonitorService(store, plan.Enterprise, &fakeCacheInvalidator{})

	_, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   uuid.New(),
		Name:        "job",
		IntervalSec: 60,
	})
	assert.NoError(t, err)
}

func TestUpdateMonitorInvalidatesTokenCache(t *testing.T) {
	store := newFakeMonitorStore()
	cache := &fakeCacheInvalidator{}
	svc := newMonitorService(store, plan.Pro, cache)

	accountID := uuid.New()
	res, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   accountID,
		Name:        "db-backup",
		IntervalSec: 3600,
	})
	require.NoError(t, err)

	interval := int32(7200)
	updated, err := svc.UpdateMonitor(context.Background(), accountID, res.MonitorID,
		UpdateMonitorCmd{IntervalSec: &interval})
	require.NoError(t, err)
	assert.Equal(t, int32(7200), updated.IntervalSec)
	assert.Equal(t, []string{res.PingToken}, cache.deleted)
}

func TestDeleteMonitorInvalidatesTokenCache(t *testing.T) {
	store := newFakeMonitorStore()
	cache := &fakeCacheInvalidator{}
	svc := newMonitorService(store, plan.Pro, cache)

	accountID := uuid.New()
	res, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   accountID,
		Name:        "db-backup",
		IntervalSec: 3600,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMonitor(context.Background(), accountID, res.MonitorID))
	assert.Equal(t, []string{res.PingToken}, cache.deleted)
	assert.Equal(t, []uuid.UUID{res.MonitorID}, store.deleted)
}

func TestMonitorOwnershipScoping(t *testing.T) {
	store := newFakeMonitorStore()
	svc := newMonitorService(store, plan.Pro, &fakeCacheInvalidator{})

	owner := uuid.New()
	res, err := svc.CreateMonitor(context.Background(), CreateMonitorCmd{
		AccountID:   owner,
		Name:        "db-backup",
		IntervalSec: 3600,
	})
	require.NoError(t, err)

	stranger := uuid.New()

	_, err = svc.GetMonitor(context.Background(), stranger, res.MonitorID)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))

	_, err = svc.ListPings(context.Background(), stranger, res.MonitorID, 10, 0)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))

	_, err = svc.ListAlerts(context.Background(), stranger, res.MonitorID, 10, 0)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}
