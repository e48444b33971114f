package model

type Upload struct {
	ID             string `gorm:"column:id;type:text;primaryKey"`
	BatchID        string `gorm:"column:batch_id;type:text;not null;default:'';index"`
	Owner          string `gorm:"column:owner;type:text;not null;index:idx_uploads_owner_course,priority:1"`
	SourceDocument string `gorm:"column:source_document;type:text;not null"`
	SourceURL      string `gorm:"column:source_url;type:text;not null;default:''"`
	CourseName     string `gorm:"column:course_name;type:text;not null;index:idx_uploads_owner_course,priority:2"`
	ContentHash    string `gorm:"column:content_hash;type:text;not null;index"`
	EventCount     int    `gorm:"column:event_count;not null"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null"`
}

func (Upload) TableName() string {
	return "uploads"
}
