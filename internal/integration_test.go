package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"venue-occupancy-backend/config"
	"venue-occupancy-backend/internal/ingest"
	"venue-occupancy-backend/internal/model"
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/store"
)

// TestReservationLifecycle simulates the entire lifecycle of a hotel-room
// booking as seen through the channel feed: a confirmed stay is mirrored,
// an overlapping booking flags a conflict, and a booking that vanishes from
// the feed is cancelled rather than deleted.
func TestReservationLifecycle(t *testing.T) {
	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	// Run database migrations.
	err = testDB.AutoMigrate(
		&model.Zone{},
		&model.Resource{},
		&model.Reservation{},
		&model.OverrideEvent{},
		&model.PushSubscription{},
	)
	assert.NoError(t, err)

	// 2. Create a mock configuration.
	mockConfig := &config.Config{
		Feed: config.FeedConfig{
			StatusConfirmedValues: []int{1},
			StatusSeatedValues:    []int{2},
			StatusCompletedValues: []int{4},
			StatusCancelledValues: []int{9},
			Request: config.FeedRequest{
				PageSize: 10, // Keep it simple for the test
			},
			Timezone: "UTC",
		},
	}
	mockConfig.WorkerPool.Size = 4

	// 3. Mock server to simulate the channel export. The test swaps the
	// response set between cycles.
	confirmedStay := store.FeedItem{
		BookingRef: "BK-100", UnitID: 301, UnitLabel: "West Wing R301",
		UnitType: "room", ZoneName: "West Wing", Status: 1, PartySize: 2,
		ClientName: "SMITH", StartDate: "2025-06-09", EndDate: "2025-06-12",
	}
	overlappingStay := store.FeedItem{
		BookingRef: "BK-101", UnitID: 301, UnitLabel: "West Wing R301",
		UnitType: "room", ZoneName: "West Wing", Status: 1, PartySize: 3,
		ClientName: "JONES", StartDate: "2025-06-10", EndDate: "2025-06-13",
	}

	currentItems := []store.FeedItem{confirmedStay}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var response ingest.FeedResponse
		response.Code = 0
		response.Data.Page = 1
		response.Data.PageSize = 10
		response.Data.Total = len(currentItems)
		response.Data.Items = currentItems

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(response)
		assert.NoError(t, err)
	}))
	defer server.Close()

	mockConfig.Feed.Request.URL = server.URL

	// 4. Instantiate the store and ingest service.
	gormStore := store.NewGormStore(testDB)
	ingestService := ingest.NewService(mockConfig, gormStore)

	ctx := context.Background()
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return occupancy.Day(d)
	}

	// resolve301 loads a fresh snapshot and resolves room 301 at noon on
	// the given day.
	resolve301 := func(t *testing.T, dayStr string) occupancy.Result {
		resources, snap, err := gormStore.LoadSnapshot(ctx)
		require.NoError(t, err)
		var room *occupancy.Resource
		for i := range resources {
			if resources[i].ID == 301 {
				room = &resources[i]
			}
		}
		require.NotNil(t, room, "room 301 should be in the catalog")
		resolver := &occupancy.Resolver{}
		return resolver.Resolve(*room, day(dayStr).Add(12*time.Hour), snap)
	}

	// --- Cycle 1: Confirmed stay is mirrored ---
	t.Run("Cycle 1: Confirmed Stay Is Mirrored", func(t *testing.T) {
		ingestService.SyncOnce(ctx)

		var zone model.Zone
		err := testDB.Where("name = ?", "West Wing").First(&zone).Error
		assert.NoError(t, err, "Expected the feed to create the zone")

		var room model.Resource
		err = testDB.First(&room, 301).Error
		assert.NoError(t, err, "Expected the feed to create the resource")
		assert.Equal(t, zone.ID, room.ZoneID)
		assert.Equal(t, "room", room.Kind)
		assert.True(t, room.Active)

		var booking model.Reservation
		err = testDB.Where("booking_ref = ?", "BK-100").First(&booking).Error
		assert.NoError(t, err)
		assert.Equal(t, int64(301), booking.ResourceID)
		assert.Equal(t, "confirmed", booking.Status)
		assert.Equal(t, day("2025-06-09").Unix(), booking.StartDate.Unix())
		assert.Equal(t, day("2025-06-12").Unix(), booking.EndDate.Unix())

		result := resolve301(t, "2025-06-10")
		assert.Equal(t, occupancy.StatusReserved, result.Status)
		assert.False(t, result.Conflict)
	})

	// --- Cycle 2: Overlapping booking flags a conflict ---
	t.Run("Cycle 2: Overlapping Booking Flags A Conflict", func(t *testing.T) {
		currentItems = []store.FeedItem{confirmedStay, overlappingStay}
		ingestService.SyncOnce(ctx)

		var count int64
		testDB.Model(&model.Reservation{}).Where("resource_id = ? AND status = ?", 301, "confirmed").Count(&count)
		assert.Equal(t, int64(2), count, "Both bookings should be mirrored")

		result := resolve301(t, "2025-06-10")
		assert.Equal(t, occupancy.StatusReserved, result.Status)
		assert.True(t, result.Conflict, "Overlapping confirmed bookings must be flagged")

		// The earlier-starting booking stays authoritative.
		var first model.Reservation
		err := testDB.Where("booking_ref = ?", "BK-100").First(&first).Error
		assert.NoError(t, err)
		assert.Equal(t, first.ID, result.IntervalID)
	})

	// --- Cycle 3: Vanished booking is cancelled, not deleted ---
	t.Run("Cycle 3: Vanished Booking Is Cancelled", func(t *testing.T) {
		currentItems = []store.FeedItem{confirmedStay}
		ingestService.SyncOnce(ctx)

		var vanished model.Reservation
		err := testDB.Where("booking_ref = ?", "BK-101").First(&vanished).Error
		assert.NoError(t, err, "Cancelled bookings are kept for audit")
		assert.Equal(t, "cancelled", vanished.Status)

		result := resolve301(t, "2025-06-10")
		assert.Equal(t, occupancy.StatusReserved, result.Status)
		assert.False(t, result.Conflict, "A cancelled booking cannot conflict")
	})
}
