package models

// Topic is one entry of the legal topic taxonomy. The taxonomy is loaded
// once at startup and treated as read-only for the process lifetime.
type Topic struct {
	// Key is the canonical identifier used in prompts and passage tags
	// (e.g. "landlordTenant").
	Key string `json:"key"`

	// Names maps locale to display name. Locales: en-US, zh-HK, zh-CN.
	Names map[string]string `json:"names"`
}
