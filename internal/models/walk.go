package models

import "time"

type WalkStatus string

const (
	WalkPending    WalkStatus = "pending"
	WalkInProgress WalkStatus = "in_progress"
	WalkCompleted  WalkStatus = "completed"
)

type RoutePoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

type Walk struct {
	ID         string       `json:"id"`
	BookingID  string       `json:"booking_id"`
	StartTime  *time.Time   `json:"start_time"`
	EndTime    *time.Time   `json:"end_time"`
	RouteData  []RoutePoint `json:"route_data"`
	Photos     []string     `json:"photos"`
	ReportText *string      `json:"report_text"`
	Status     WalkStatus   `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}
