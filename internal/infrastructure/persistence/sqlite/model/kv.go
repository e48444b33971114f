package model

// KV backs the generic cache port.
type KV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	ExpiresAt string `gorm:"column:expires_at;type:text;not null;default:''"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (KV) TableName() string {
	return "kv"
}
