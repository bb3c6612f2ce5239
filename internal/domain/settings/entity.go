package settings

// Entry is one row of app_config. Value is opaque, usually serialized JSON.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
