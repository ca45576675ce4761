package ping

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskalive/pkg/apperror"
	"taskalive/pkg/redisstore"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPing struct {
	MonitorID uuid.UUID
	Now       time.Time
	NextPing  time.Time
	Message   string
	SourceIP  string
}

type fakePingStore struct {
	refs     map[string]redisstore.MonitorRef
	recorded []recordedPing

	resolveCalls int
	recordErr    error
}

func (f *fakePingStore) ResolveToken(_ context.Context, token string) (redisstore.MonitorRef, error) {
	f.resolveCalls++
	ref, ok := f.refs[token]
	if !ok {
		return redisstore.MonitorRef{}, apperror.New(apperror.NotFound, "repository.ping.resolve_token",
			errors.New("no rows")).WithMessage("monitor not found")
	}
	return ref, nil
}

func (f *fakePingStore) RecordPing(_ context.Context, monitorID uuid.UUID, now, nextPing time.Time, message, sourceIP string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, recordedPing{
		MonitorID: monitorID,
		Now:       now,
		NextPing:  nextPing,
		Message:   message,
		SourceIP:  sourceIP,
	})
	return nil
}

type fakeTokenCache struct {
	refs map[string]redisstore.MonitorRef

	getErr error
	setErr error
	sets   int
}

func (f *fakeTokenCache) GetMonitorRef(_ context.Context, token string) (*redisstore.MonitorRef, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if ref, ok := f.refs[token]; ok {
		return &ref, nil
	}
	return nil, nil
}

func (f *fakeTokenCache) SetMonitorRef(_ context.Context, token string, ref redisstore.MonitorRef, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.refs == nil {
		f.refs = make(map[string]redisstore.MonitorRef)
	}
	f.refs[token] = ref
	f.sets++
	return nil
}

func newPingService(store *fakePingStore, cache *fakeTokenCache) *Service {
	logger := zerolog.Nop()
	return NewService(store, cache, 5*time.Minute, &logger)
}

func TestIngestSetsDeadlineFromInterval(t *testing.T) {
	monitorID := uuid.New()
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{
		"tok-1": {MonitorID: monitorID, IntervalSec: 300},
	}}
	svc := newPingService(store, &fakeTokenCache{})

	before := time.Now().UTC()
	res, err := svc.Ingest(context.Background(), "tok-1", "backup done", "203.0.113.9")
	require.NoError(t, err)
	after := time.Now().UTC()

	require.Len(t, store.recorded, 1)
	rec := store.recorded[0]
	assert.Equal(t, monitorID, rec.MonitorID)
	assert.Equal(t, "backup done", rec.Message)
	assert.Equal(t, "203.0.113.9", rec.SourceIP)

	// deadline is ping time + interval
	assert.Equal(t, rec.Now.Add(300*time.Second), rec.NextPing)
	assert.Equal(t, rec.NextPing, res.NextPing)
	assert.False(t, rec.Now.Before(before))
	assert.False(t, rec.Now.After(after))
}

func TestIngestUnknownToken(t *testing.T) {
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{}}
	svc := newPingService(store, &fakeTokenCache{})

	_, err := svc.Ingest(context.Background(), "no-such-token", "", "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestIngestEmptyToken(t *testing.T) {
	store := &fakePingStore{}
	svc := newPingService(store, &fakeTokenCache{})

	_, err := svc.Ingest(context.Background(), "", "", "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
	assert.Zero(t, store.resolveCalls)
}

func TestIngestRejectsOversizeMessage(t *testing.T) {
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{
		"tok-1": {MonitorID: uuid.New(), IntervalSec: 60},
	}}
	svc := newPingService(store, &fakeTokenCache{})

	_, err := svc.Ingest(context.Background(), "tok-1", strings.Repeat("x", 2049), "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))
	assert.Empty(t, store.recorded)
}

func TestIngestResolvesFromCacheFirst(t *testing.T) {
	monitorID := uuid.New()
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{}}
	cache := &fakeTokenCache{refs: map[string]redisstore.MonitorRef{
		"tok-1": {MonitorID: monitorID, IntervalSec: 120},
	}}
	svc := newPingService(store, cache)

	_, err := svc.Ingest(context.Background(), "tok-1", "", "")
	require.NoError(t, err)

	// the db was never asked
	assert.Zero(t, store.resolveCalls)
	require.Len(t, store.recorded, 1)
	assert.Equal(t, monitorID, store.recorded[0].MonitorID)
}

func TestIngestPopulatesCacheOnMiss(t *testing.T) {
	monitorID := uuid.New()
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{
		"tok-1": {MonitorID: monitorID, IntervalSec: 60},
	}}
	cache := &fakeTokenCache{}
	svc := newPingService(store, cache)

	_, err := svc.Ingest(context.Background(), "tok-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// second ping is served from cache
	_, err = svc.Ingest(context.Background(), "tok-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.resolveCalls)
}

func TestIngestSurvivesCacheFailure(t *testing.T) {
	monitorID := uuid.New()
	store := &fakePingStore{refs: map[string]redisstore.MonitorRef{
		"tok-1": {MonitorID: monitorID, IntervalSec: 60},
	}}
	cache := &fakeTokenCache{
		getErr: errors.New("redis: connection refused"),
		setErr: errors.New("redis: connection refused"),
	}
	svc := newPingService(store, cache)

	_, err := svc.Ingest(context.Background(), "tok-1", "", "")
	require.NoError(t, err)
	require.Len(t, store.recorded, 1)
}
