package ingest

import "venue-occupancy-backend/internal/store"

// FeedResponse models the top-level structure of the booking channel's
// export endpoint.
type FeedResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
		Total    int              `json:"total"`
		Items    []store.FeedItem `json:"items"`
	} `json:"data"`
}
