package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"venue-occupancy-backend/config"
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	UpsertZonesAndResourcesFunc func(ctx context.Context, items []store.FeedItem) error
	SyncReservationsFunc        func(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error)
	LoadSnapshotFunc            func(ctx context.Context) ([]occupancy.Resource, *occupancy.Snapshot, error)
	DBFunc                      func() *gorm.DB
}

func (m *mockStore) UpsertZonesAndResources(ctx context.Context, items []store.FeedItem) error {
	return m.UpsertZonesAndResourcesFunc(ctx, items)
}

func (m *mockStore) SyncReservations(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
	return m.SyncReservationsFunc(ctx, now, items, classify)
}

func (m *mockStore) LoadSnapshot(ctx context.Context) ([]occupancy.Resource, *occupancy.Snapshot, error) {
	return m.LoadSnapshotFunc(ctx)
}

func (m *mockStore) DB() *gorm.DB {
	return m.DBFunc()
}

func testConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Feed.Enabled = true
	cfg.Feed.Timezone = "UTC"
	cfg.Feed.Request.URL = url
	cfg.Feed.Request.PageSize = 10
	cfg.Feed.StatusConfirmedValues = []int{1}
	cfg.Feed.StatusSeatedValues = []int{2}
	cfg.Feed.StatusCancelledValues = []int{9}
	cfg.WorkerPool.Size = 4
	return cfg
}

func feedServer(t *testing.T, items []store.FeedItem) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := FeedResponse{Code: 0}
		resp.Data.Page = 1
		resp.Data.PageSize = 10
		resp.Data.Total = len(items)
		resp.Data.Items = items
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestSyncOnce_ValidItemsReachTheStore(t *testing.T) {
	sched := "2024-07-01 20:00:00"
	server := feedServer(t, []store.FeedItem{{
		BookingRef:    "BR-1",
		UnitID:        101,
		UnitLabel:     "Terrace T-1 (4)",
		UnitType:      "table",
		Status:        1,
		PartySize:     4,
		ClientName:    "Walk-in",
		StartDate:     "2024-07-01",
		EndDate:       "2024-07-02",
		ScheduledTime: &sched,
	}})
	defer server.Close()

	var synced []store.FeedItem
	ms := &mockStore{
		UpsertZonesAndResourcesFunc: func(ctx context.Context, items []store.FeedItem) error {
			return nil
		},
		SyncReservationsFunc: func(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
			synced = items
			assert.Equal(t, occupancy.ReservationConfirmed, classify(1))
			assert.Equal(t, occupancy.ReservationStatus(""), classify(99))
			return nil, nil
		},
		DBFunc: func() *gorm.DB { return nil },
	}

	svc := NewService(testConfig(server.URL), ms)
	svc.SyncOnce(context.Background())

	require.Len(t, synced, 1)
	item := synced[0]
	assert.True(t, item.StartParsed.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, item.EndParsed.Equal(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, item.ScheduledParsed)
	assert.Equal(t, 20, item.ScheduledParsed.Hour())
}

func TestSyncOnce_RejectsMalformedItems(t *testing.T) {
	server := feedServer(t, []store.FeedItem{
		{
			// end == start: zero-length half-open range.
			BookingRef: "BAD-RANGE",
			UnitID:     101,
			Status:     1,
			StartDate:  "2024-07-01",
			EndDate:    "2024-07-01",
		},
		{
			BookingRef: "BAD-STATUS",
			UnitID:     102,
			Status:     77,
			StartDate:  "2024-07-01",
			EndDate:    "2024-07-02",
		},
		{
			BookingRef: "BAD-DATE",
			UnitID:     103,
			Status:     1,
			StartDate:  "yesterday",
			EndDate:    "2024-07-02",
		},
		{
			BookingRef: "GOOD",
			UnitID:     104,
			Status:     1,
			StartDate:  "2024-07-01",
			EndDate:    "2024-07-02",
		},
	})
	defer server.Close()

	var synced []store.FeedItem
	ms := &mockStore{
		UpsertZonesAndResourcesFunc: func(ctx context.Context, items []store.FeedItem) error { return nil },
		SyncReservationsFunc: func(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
			synced = items
			return nil, nil
		},
		DBFunc: func() *gorm.DB { return nil },
	}

	svc := NewService(testConfig(server.URL), ms)
	svc.SyncOnce(context.Background())

	require.Len(t, synced, 1, "only the well-formed item may pass the boundary")
	assert.Equal(t, "GOOD", synced[0].BookingRef)
}

func TestSyncOnce_DispatchesConflictAlerts(t *testing.T) {
	server := feedServer(t, []store.FeedItem{{
		BookingRef: "BR-1",
		UnitID:     101,
		Status:     1,
		StartDate:  "2024-07-01",
		EndDate:    "2024-07-02",
	}})
	defer server.Close()

	ms := &mockStore{
		UpsertZonesAndResourcesFunc: func(ctx context.Context, items []store.FeedItem) error { return nil },
		SyncReservationsFunc: func(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
			// Simulate the store detecting a fresh double-booking.
			return []int64{101}, nil
		},
		DBFunc: func() *gorm.DB { return nil },
	}

	svc := NewService(testConfig(server.URL), ms)
	svc.SyncOnce(context.Background())

	select {
	case resourceID := <-svc.workerPool.Jobs():
		assert.Equal(t, int64(101), resourceID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for conflict alert dispatch")
	}
}

func TestSyncOnce_AbortsWhenFetchFailsWithNoItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ms := &mockStore{
		UpsertZonesAndResourcesFunc: func(ctx context.Context, items []store.FeedItem) error {
			t.Fatal("store must not be touched when the fetch fails outright")
			return nil
		},
		SyncReservationsFunc: func(ctx context.Context, now time.Time, items []store.FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
			t.Fatal("store must not be touched when the fetch fails outright")
			return nil, nil
		},
		DBFunc: func() *gorm.DB { return nil },
	}

	svc := NewService(testConfig(server.URL), ms)
	svc.SyncOnce(context.Background())
}
