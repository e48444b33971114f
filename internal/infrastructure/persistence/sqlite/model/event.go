package model

// Event is one persisted calendar entry. Dates are stored as YYYY-MM-DD text
// and timestamps as fixed-width UTC text so both sort lexically.
type Event struct {
	ID             string `gorm:"column:id;type:text;primaryKey"`
	Owner          string `gorm:"column:owner;type:text;not null;index:idx_events_owner_course,priority:1;uniqueIndex:idx_events_batch_key,priority:1"`
	BatchID        string `gorm:"column:batch_id;type:text;not null;uniqueIndex:idx_events_batch_key,priority:2"`
	SourceDocument string `gorm:"column:source_document;type:text;not null"`
	SourceURL      string `gorm:"column:source_url;type:text;not null;default:''"`
	CourseName     string `gorm:"column:course_name;type:text;not null;index:idx_events_owner_course,priority:2;uniqueIndex:idx_events_batch_key,priority:5"`
	Date           string `gorm:"column:date;type:text;not null;index;uniqueIndex:idx_events_batch_key,priority:3"`
	Title          string `gorm:"column:title;type:text;not null;uniqueIndex:idx_events_batch_key,priority:4"`
	Description    string `gorm:"column:description;type:text;not null;default:''"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null"`
}

func (Event) TableName() string {
	return "events"
}
