package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"venue-occupancy-backend/internal/model"
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	UpsertZonesAndResources(ctx context.Context, items []FeedItem) error
	SyncReservations(ctx context.Context, now time.Time, items []FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error)
	LoadSnapshot(ctx context.Context) ([]occupancy.Resource, *occupancy.Snapshot, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for handler-level queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SyncReservations mirrors the feed into the reservations table and reports
// which resources have NEWLY become double-booked as a result, so conflict
// alerts fire once per conflict, not once per sync cycle. Bookings that vanished
// from the feed are marked cancelled, never deleted: cancelled rows stay
// behind for audit and simply stop counting towards occupancy.
func (s *gormStore) SyncReservations(ctx context.Context, now time.Time, items []FeedItem, classify func(int) occupancy.ReservationStatus) ([]int64, error) {
	before, err := s.conflictedResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute prior conflict set: %w", err)
	}

	seenRefs := make([]string, 0, len(items))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			status := classify(item.Status)
			if status == "" {
				log.Printf("Warning: skipping booking %q with unclassified status code %d", item.BookingRef, item.Status)
				continue
			}

			ref := item.BookingRef
			if ref == "" {
				// Some channels omit their reference; mint a stable one so
				// the row can still be addressed on later cycles.
				ref = uuid.NewString()
			}

			row := model.Reservation{
				BookingRef:  ref,
				ResourceID:  item.UnitID,
				StartDate:   item.StartParsed,
				EndDate:     item.EndParsed,
				ScheduledAt: item.ScheduledParsed,
				Status:      string(status),
				PartySize:   item.PartySize,
				ClientRef:   item.ClientName,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "booking_ref"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"resource_id", "start_date", "end_date", "scheduled_at",
					"status", "party_size", "client_ref", "updated_at",
				}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to upsert reservation %q: %w", ref, err)
			}
			seenRefs = append(seenRefs, ref)
		}

		// Bookings the channel no longer reports were cancelled upstream.
		q := tx.Model(&model.Reservation{}).
			Where("status NOT IN ?", []string{
				string(occupancy.ReservationCancelled),
				string(occupancy.ReservationCompleted),
			})
		if len(seenRefs) > 0 {
			q = q.Where("booking_ref NOT IN ?", seenRefs)
		}
		if err := q.Updates(map[string]any{
			"status":     string(occupancy.ReservationCancelled),
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel vanished bookings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	after, err := s.conflictedResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute conflict set: %w", err)
	}

	var newlyConflicted []int64
	for id := range after {
		if !before[id] {
			newlyConflicted = append(newlyConflicted, id)
		}
	}
	sort.Slice(newlyConflicted, func(i, j int) bool { return newlyConflicted[i] < newlyConflicted[j] })
	return newlyConflicted, nil
}

// conflictedResources returns the set of resources that currently have at
// least two overlapping non-cancelled reservations.
func (s *gormStore) conflictedResources(ctx context.Context) (map[int64]bool, error) {
	var rows []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("status <> ?", string(occupancy.ReservationCancelled)).
		Order("resource_id, start_date, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	conflicted := make(map[int64]bool)
	var prevResource int64
	var reachEnd time.Time
	for _, r := range rows {
		if r.ResourceID != prevResource {
			prevResource = r.ResourceID
			reachEnd = r.EndDate
			continue
		}
		if r.StartDate.Before(reachEnd) {
			conflicted[r.ResourceID] = true
		}
		if r.EndDate.After(reachEnd) {
			reachEnd = r.EndDate
		}
	}
	return conflicted, nil
}

// UpsertZonesAndResources keeps the zone and resource catalog in sync with
// the metadata the feed denormalizes onto every booking.
func (s *gormStore) UpsertZonesAndResources(ctx context.Context, items []FeedItem) error {
	existingResources, err := s.fetchAllResources(ctx)
	if err != nil {
		log.Printf("Warning: could not pre-fetch resources: %v", err)
		existingResources = make(map[int64]model.Resource)
	}

	// Phase 1: Process and save zones
	zoneMap, err := s.processAndSaveZones(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to process zones: %w", err)
	}

	// Phase 2: Build resource slice for upserting
	var resourcesToUpsert []model.Resource
	seen := make(map[int64]bool)
	for _, item := range items {
		if seen[item.UnitID] {
			continue
		}
		seen[item.UnitID] = true

		parsedLabel, err := parse.ParseLabel(item.UnitLabel, item.ZoneName)
		if err != nil {
			log.Printf("Error parsing label for unit %d (%s): %v", item.UnitID, item.UnitLabel, err)
			continue
		}

		zone, ok := zoneMap[parsedLabel.Zone]
		if !ok {
			log.Printf("Error: could not find zone %q in map after upserting. Skipping unit %d.", parsedLabel.Zone, item.UnitID)
			continue
		}

		resource, needsUpsert := prepareResource(item, parsedLabel, existingResources, zone.ID)
		if needsUpsert {
			resourcesToUpsert = append(resourcesToUpsert, resource)
		}
	}

	// Execute batch operation for resources
	if len(resourcesToUpsert) > 0 {
		log.Printf("Batch upserting %d resources...", len(resourcesToUpsert))
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return batchUpsertResources(tx, resourcesToUpsert)
		})
	}
	return nil
}

func (s *gormStore) fetchAllResources(ctx context.Context) (map[int64]model.Resource, error) {
	var resources []model.Resource
	if err := s.db.WithContext(ctx).Find(&resources).Error; err != nil {
		return nil, err
	}
	resourceMap := make(map[int64]model.Resource, len(resources))
	for _, r := range resources {
		resourceMap[r.ID] = r
	}
	return resourceMap, nil
}

func (s *gormStore) processAndSaveZones(ctx context.Context, items []FeedItem) (map[string]model.Zone, error) {
	zonesToUpsert := make(map[string]model.Zone)
	for _, item := range items {
		parsedLabel, err := parse.ParseLabel(item.UnitLabel, item.ZoneName)
		if err != nil {
			continue
		}
		if _, exists := zonesToUpsert[parsedLabel.Zone]; !exists {
			zonesToUpsert[parsedLabel.Zone] = model.Zone{Name: parsedLabel.Zone}
		}
	}

	if len(zonesToUpsert) == 0 {
		return make(map[string]model.Zone), nil
	}

	var zoneList []model.Zone
	for _, z := range zonesToUpsert {
		zoneList = append(zoneList, z)
	}

	log.Printf("Batch upserting %d zones...", len(zoneList))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&zoneList).Error; err != nil {
		return nil, fmt.Errorf("batch upsert zones failed: %w", err)
	}

	var allZones []model.Zone
	if err := s.db.WithContext(ctx).Find(&allZones).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve zones after upsert: %w", err)
	}

	zoneMap := make(map[string]model.Zone, len(allZones))
	for _, z := range allZones {
		zoneMap[z.Name] = z
	}
	return zoneMap, nil
}

func prepareResource(item FeedItem, parsedLabel parse.ParsedLabel, existingResources map[int64]model.Resource, zoneID int64) (model.Resource, bool) {
	newResource := model.Resource{
		ID:       item.UnitID,
		ZoneID:   zoneID,
		Name:     item.UnitLabel,
		Kind:     item.UnitType,
		Capacity: parsedLabel.Capacity,
		Seq:      parsedLabel.Seq,
		Active:   true,
		Window:   string(occupancy.WindowBoth),
	}

	if oldResource, exists := existingResources[newResource.ID]; exists {
		// Staff-managed fields (active flag, service window) are never
		// overwritten by the feed.
		newResource.Active = oldResource.Active
		newResource.Window = oldResource.Window
		if newResource.Capacity == 0 {
			newResource.Capacity = oldResource.Capacity
		}
		if oldResource.Name == newResource.Name &&
			oldResource.Kind == newResource.Kind &&
			oldResource.Capacity == newResource.Capacity &&
			oldResource.ZoneID == newResource.ZoneID &&
			oldResource.Seq == newResource.Seq {
			return newResource, false
		}
	}
	return newResource, true
}

func batchUpsertResources(tx *gorm.DB, resources []model.Resource) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"zone_id", "name", "kind", "capacity", "seq", "updated_at"}),
	}).Create(&resources).Error
}
