package models

import (
	"github.com/uptrace/bun"
)

// Event is a catalog record. The catalog is read-only from this service's
// perspective; events and their schedules are managed elsewhere.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID  string `bun:"event_id,pk" json:"event_id"`
	Title    string `bun:"title,notnull" json:"title"`
	Slug     string `bun:"slug,notnull" json:"slug"`
	Category string `bun:"category" json:"category,omitempty"`

	Dates []*EventDate `bun:"rel:has-many,join:event_id=event_id" json:"dates"`
}

// EventDate is one selectable start/end pair on an event's schedule.
// DateID may be empty, in which case the range is addressed by its
// position (as a decimal string) within the schedule.
type EventDate struct {
	bun.BaseModel `bun:"table:event_dates"`

	ID        int64  `bun:"id,pk,autoincrement" json:"-"`
	DateID    string `bun:"date_id" json:"date_id,omitempty"`
	EventID   string `bun:"event_id,notnull" json:"event_id"`
	StartDate string `bun:"start_date" json:"start_date"`
	EndDate   string `bun:"end_date" json:"end_date"`
	Position  int    `bun:"position,notnull" json:"position"`
}
