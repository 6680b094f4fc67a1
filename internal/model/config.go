package model

// ConfigEntry is a per-user key/value setting, e.g. "deepseek_api_key".
type ConfigEntry struct {
	Key    string
	UserID int64
	Value  string
}
