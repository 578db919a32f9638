package domain

import (
	"time"
)

// AggregateID is the fixed key of the singleton visitor count row.
const AggregateID = "global"

// VisitorRecord represents one unique visitor of the public site.
// Telemetry fields (user agent, device type, browser, duration) are
// client-reported and stored verbatim.
type VisitorRecord struct {
	VisitorID     string    `json:"visitor_id" db:"visitor_id"`
	Referrer      *string   `json:"referrer,omitempty" db:"referrer"`
	UserAgent     string    `json:"user_agent" db:"user_agent"`
	VisitCount    int64     `json:"visit_count" db:"visit_count"`
	FirstVisit    time.Time `json:"first_visit" db:"first_visit"`
	LastVisit     time.Time `json:"last_visit" db:"last_visit"`
	TotalDuration int64     `json:"total_duration" db:"total_duration"`
	DeviceType    string    `json:"device_type" db:"device_type"`
	Browser       string    `json:"browser" db:"browser"`
}

// VisitorCount is the denormalized aggregate row. CreatedAt is the
// accounting epoch and never changes once set; Count is only written by
// the admin recompute, so it may drift between recomputes.
type VisitorCount struct {
	ID        string    `json:"id" db:"id"`
	Count     int64     `json:"count" db:"count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TrackRequest is the client-reported visit payload. Every field except
// the identifier is optional: the client is untrusted and the contract is
// best-effort accounting.
type TrackRequest struct {
	VisitorID     string     `json:"visitor_id"`
	Referrer      *string    `json:"referrer,omitempty"`
	UserAgent     string     `json:"user_agent"`
	VisitCount    *int64     `json:"visit_count,omitempty"`
	FirstVisit    *time.Time `json:"first_visit,omitempty"`
	LastVisit     *time.Time `json:"last_visit,omitempty"`
	TotalDuration *int64     `json:"total_duration,omitempty"`
	DeviceType    string     `json:"device_type"`
	Browser       string     `json:"browser"`

	// IPAddress is filled in by the handler, not the client body.
	IPAddress string `json:"-"`
}

// CleanupResult is returned by the admin recompute operation.
type CleanupResult struct {
	Count     int64     `json:"count"`
	Removed   int64     `json:"removed"`
	StartDate time.Time `json:"start_date"`
}

// RateLimitInfo represents rate limiting information for track requests
type RateLimitInfo struct {
	RequestCount int64         `json:"request_count"`
	WindowStart  time.Time     `json:"window_start"`
	TTL          time.Duration `json:"ttl"`
	IsAllowed    bool          `json:"is_allowed"`
}
