package entity

import "time"

const SettingAutoUpdateEnabled = "auto_update_enabled"

type SystemSetting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
	UpdatedBy string
}
