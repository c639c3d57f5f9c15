// internal/domain/settings/entity.go
package settings

import "time"

// Setting is one configuration value under a dot-delimited section path,
// e.g. section "Application.Security", name "session.timeout".
type Setting struct {
	SectionPath     string      `json:"section_path"`
	SettingName     string      `json:"setting_name"`
	Value           interface{} `json:"value"`
	DefaultValue    interface{} `json:"default_value,omitempty"`
	IsPublic        bool        `json:"is_public"`
	Confidentiality bool        `json:"confidentiality"`
}

// CacheEntry groups the settings of one section together with the time they
// were fetched. An entry is valid only while now-Timestamp < TTL; expired
// entries are treated as absent.
type CacheEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      []Setting `json:"data"`
}

// Well-known section paths and setting names the agent itself consults.
const (
	SectionSecurity = "Application.Security"

	NameRefreshMargin  = "token.refresh_margin"
	NameSessionTimeout = "session.timeout"
)
