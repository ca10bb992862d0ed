package store

import (
	"context"
	"fmt"
	"log"

	"venue-occupancy-backend/internal/model"
	"venue-occupancy-backend/internal/occupancy"
)

// LoadSnapshot reads the catalog, reservations and overrides as one
// immutable snapshot for the resolver. This is the ingestion boundary of
// the occupancy core: malformed intervals and overrides pointing at unknown
// resources are dropped here with a warning, so the resolver never sees
// them. Concurrent writers may land between calls; each call simply reads a
// fresh, consistent view.
func (s *gormStore) LoadSnapshot(ctx context.Context) ([]occupancy.Resource, *occupancy.Snapshot, error) {
	var zones []model.Zone
	if err := s.db.WithContext(ctx).Find(&zones).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load zones: %w", err)
	}
	zoneNames := make(map[int64]string, len(zones))
	for _, z := range zones {
		zoneNames[z.ID] = z.Name
	}

	var resourceRows []model.Resource
	if err := s.db.WithContext(ctx).Order("zone_id, seq, id").Find(&resourceRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load resources: %w", err)
	}

	resources := make([]occupancy.Resource, 0, len(resourceRows))
	known := make(map[int64]bool, len(resourceRows))
	for _, row := range resourceRows {
		known[row.ID] = true
		resources = append(resources, occupancy.Resource{
			ID:          row.ID,
			Name:        row.Name,
			Capacity:    row.Capacity,
			Zone:        zoneNames[row.ZoneID],
			Active:      row.Active,
			Window:      occupancy.ServiceWindow(row.Window),
			Granularity: granularityFor(row.Kind),
		})
	}

	var reservationRows []model.Reservation
	if err := s.db.WithContext(ctx).Find(&reservationRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	intervals := make([]occupancy.Interval, 0, len(reservationRows))
	for _, row := range reservationRows {
		iv := occupancy.Interval{
			ID:         row.ID,
			ResourceID: row.ResourceID,
			Start:      row.StartDate,
			End:        row.EndDate,
			Status:     occupancy.ReservationStatus(row.Status),
			PartySize:  row.PartySize,
			ClientRef:  row.ClientRef,
		}
		if row.ScheduledAt != nil {
			iv.ScheduledAt = *row.ScheduledAt
		}
		if err := occupancy.CheckInterval(iv); err != nil {
			log.Printf("Warning: dropping reservation %d from snapshot: %v", row.ID, err)
			continue
		}
		intervals = append(intervals, iv)
	}

	var overrideRows []model.OverrideEvent
	if err := s.db.WithContext(ctx).Find(&overrideRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	overrides := make([]occupancy.Override, 0, len(overrideRows))
	for _, row := range overrideRows {
		if !known[row.ResourceID] {
			log.Printf("Warning: dropping override for unknown resource %d on %s", row.ResourceID, row.Date.Format("2006-01-02"))
			continue
		}
		ov := occupancy.Override{
			ResourceID: row.ResourceID,
			Day:        row.Date,
			Kind:       occupancy.OverrideKind(row.Kind),
			Note:       row.Note,
		}
		if err := occupancy.CheckOverride(ov); err != nil {
			log.Printf("Warning: dropping override from snapshot: %v", err)
			continue
		}
		overrides = append(overrides, ov)
	}

	return resources, occupancy.NewSnapshot(intervals, overrides), nil
}

func granularityFor(kind string) occupancy.Granularity {
	if kind == "table" {
		return occupancy.GranularityIntraday
	}
	return occupancy.GranularityMultiday
}
