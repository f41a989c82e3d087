package planning

import (
	"time"

	"github.com/erp/erpcore/internal/domain/entity"
)

// Calendar event types
const (
	EventTypeReminder = "reminder"
	EventTypeDue      = "due"
	EventTypeMeeting  = "meeting"
)

// CalendarEvent is a dashboard scheduling entry. Start and End are timestamps.
type CalendarEvent struct {
	entity.Model
	Title       *string    `gorm:"type:varchar(255)" json:"title"`
	Start       *time.Time `gorm:"index" json:"start"`
	End         *time.Time `json:"end"`
	Type        *string    `gorm:"type:varchar(50)" json:"type" validate:"omitempty,oneof=reminder due meeting"`
	Description *string    `gorm:"type:text" json:"description"`
}

// TableName returns the table name for GORM
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// Bindings implements entity.Record
func (e *CalendarEvent) Bindings() entity.Bindings {
	return entity.Bindings{
		"title":       &e.Title,
		"start":       &e.Start,
		"end":         &e.End,
		"type":        &e.Type,
		"description": &e.Description,
	}
}

// CalendarEventDescriptor describes the calendar_events entity
func CalendarEventDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "calendar_events",
		Table: "calendar_events",
		Label: "calendar event",
		New:   func() entity.Record { return &CalendarEvent{} },
		Fields: []entity.Field{
			{Name: "title", Type: entity.Text, MaxLen: 255},
			{Name: "start", Type: entity.Timestamp},
			{Name: "end", Type: entity.Timestamp},
			{Name: "type", Type: entity.Text, Enum: []string{EventTypeReminder, EventTypeDue, EventTypeMeeting}},
			{Name: "description", Type: entity.Text},
		},
	}
}
