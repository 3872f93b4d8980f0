package model

import "time"

// 当前持久化结构版本，migration 包按此顺序升级
const CurrentSchemaVersion = 4

// Setting 全局偏好（单行表，ID 恒为 1）
// 显式列而非 JSON，保证 SQLite/Postgres 迁移行为一致
type Setting struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	SchemaVersion int    `gorm:"not null;default:1" json:"schema_version"`
	Timezone      string `gorm:"type:varchar(64);not null;default:'Asia/Shanghai'" json:"timezone"`

	AutoCheckinEnabled bool   `gorm:"not null;default:true" json:"auto_checkin_enabled"`
	WindowStart        string `gorm:"type:char(5);not null;default:'08:00'" json:"window_start"`
	WindowEnd          string `gorm:"type:char(5);not null;default:'23:00'" json:"window_end"`

	SyncEnabled bool `gorm:"not null;default:true" json:"sync_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Setting) TableName() string { return "settings" }
