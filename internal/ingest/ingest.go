package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"venue-occupancy-backend/config"
	"venue-occupancy-backend/internal/notification"
	"venue-occupancy-backend/internal/occupancy"
	"venue-occupancy-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

// Service pulls reservation exports from the booking channel and mirrors
// them through the store. It owns the ingestion boundary: items that fail
// validation are rejected here and never persisted.
type Service struct {
	cfg        *config.Config
	store      store.Store
	client     *http.Client
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new feed ingest service.
func NewService(cfg *config.Config, store store.Store) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Feed.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Feed.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Feed client will not use a proxy.", cfg.Feed.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, store.DB(), &webpushOptions)

	return &Service{
		cfg:   cfg,
		store: store,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		workerPool: workerPool,
	}
}

// classify maps a raw channel status code onto a reservation status using
// the configured value lists. An empty result means the code is unknown and
// the item must be rejected at the boundary.
func (s *Service) classify(statusCode int) occupancy.ReservationStatus {
	lists := []struct {
		values []int
		status occupancy.ReservationStatus
	}{
		{s.cfg.Feed.StatusRequestedValues, occupancy.ReservationRequested},
		{s.cfg.Feed.StatusConfirmedValues, occupancy.ReservationConfirmed},
		{s.cfg.Feed.StatusSeatedValues, occupancy.ReservationInProgress},
		{s.cfg.Feed.StatusCompletedValues, occupancy.ReservationCompleted},
		{s.cfg.Feed.StatusCancelledValues, occupancy.ReservationCancelled},
	}
	for _, l := range lists {
		for _, v := range l.values {
			if statusCode == v {
				return l.status
			}
		}
	}
	return ""
}

// Run starts the ingest process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Feed.Enabled {
		log.Println("Feed ingest is disabled. Not starting.")
		return
	}
	log.Println("Starting feed ingest service...")

	s.workerPool.Start(ctx)

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Feed.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed ingest service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Feed.Interval)
		}
	}
}

// SyncOnce performs a single feed round: fetch every page, validate each
// item, and hand the survivors to the store.
func (s *Service) SyncOnce(ctx context.Context) {
	log.Println("Executing feed sync cycle...")
	now := time.Now().UTC()

	// Step 1: Fetch all pages from the channel export.
	var allItems []store.FeedItem
	total := 1
	pageSize := s.cfg.Feed.Request.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			log.Printf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		allItems = append(allItems, resp.Data.Items...)
		log.Printf("Fetched page %d/%d, total items so far: %d", page, (total/pageSize)+1, len(allItems))
	}

	// A failed fetch with zero items must not cancel every mirrored booking.
	if fetchErr != nil && len(allItems) == 0 {
		log.Println("Feed cycle aborted due to fetch error with no items retrieved. Reservations will not be updated.")
		return
	}

	// Step 2: Parse and validate; rejected items never reach the store.
	valid := allItems[:0]
	for i := range allItems {
		if err := s.prepareItem(&allItems[i]); err != nil {
			log.Printf("Warning: rejecting booking %q: %v", allItems[i].BookingRef, err)
			continue
		}
		valid = append(valid, allItems[i])
	}

	if len(valid) == 0 {
		log.Println("Feed cycle: no valid items to process.")
		// Still sync so vanished bookings get cancelled.
	}

	// Step 3: Keep the zone/resource catalog current.
	if err := s.store.UpsertZonesAndResources(ctx, valid); err != nil {
		log.Printf("Error processing zones and resources: %v", err)
		return
	}

	// Step 4: Mirror the reservations.
	conflictedIDs, err := s.store.SyncReservations(ctx, now, valid, s.classify)
	if err != nil {
		log.Printf("Error syncing reservations: %v", err)
	}

	// Alert staff watching the newly double-booked resources.
	if len(conflictedIDs) > 0 {
		log.Printf("Dispatching conflict alerts for %d resources", len(conflictedIDs))
		for _, resourceID := range conflictedIDs {
			s.workerPool.Dispatch(resourceID)
		}
	}

	log.Println("Feed sync cycle finished.")
}

// prepareItem parses the item's dates in the configured timezone and
// enforces the interval invariants. Malformed ranges are rejected, not
// clamped.
func (s *Service) prepareItem(item *store.FeedItem) error {
	start, err := s.parseDate(item.StartDate)
	if err != nil {
		return fmt.Errorf("bad start date: %w", err)
	}
	end, err := s.parseDate(item.EndDate)
	if err != nil {
		return fmt.Errorf("bad end date: %w", err)
	}
	item.StartParsed = start
	item.EndParsed = end

	scheduled, err := s.parseTimestamp(item.ScheduledTime)
	if err != nil {
		return fmt.Errorf("bad scheduled time: %w", err)
	}
	item.ScheduledParsed = scheduled

	status := s.classify(item.Status)
	if status == "" {
		return &occupancy.InputError{Reason: fmt.Sprintf("unknown status code %d", item.Status)}
	}

	check := occupancy.Interval{
		ResourceID: item.UnitID,
		Start:      start,
		End:        end,
		Status:     status,
	}
	return occupancy.CheckInterval(check)
}

// parseDate converts a feed date string into a midnight-UTC day.
func (s *Service) parseDate(dateStr string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", dateStr, err)
	}
	return occupancy.Day(parsed), nil
}

// parseTimestamp converts the feed's timestamp string into a time.Time,
// respecting the configured timezone.
func (s *Service) parseTimestamp(tsStr *string) (*time.Time, error) {
	if tsStr == nil || *tsStr == "" {
		return nil, nil
	}

	loc, err := time.LoadLocation(s.cfg.Feed.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", s.cfg.Feed.Timezone, err)
	}

	layout := "2006-01-02 15:04:05" // The layout of the timestamp from the feed
	parsedTime, err := time.ParseInLocation(layout, *tsStr, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", *tsStr, err)
	}

	return &parsedTime, nil
}

// fetchPage fetches a single page of reservation data from the channel export.
func (s *Service) fetchPage(ctx context.Context, page int) (*FeedResponse, error) {
	payload := make(map[string]any)
	for k, v := range s.cfg.Feed.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Feed.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range s.cfg.Feed.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feedResp FeedResponse
	if err := json.Unmarshal(body, &feedResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	if feedResp.Code != 0 {
		return nil, fmt.Errorf("feed returned non-zero application code: %d", feedResp.Code)
	}

	return &feedResp, nil
}
