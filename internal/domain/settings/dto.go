// internal/domain/settings/dto.go
package settings

// UpdateRequest carries a single setting write from a UI consumer.
type UpdateRequest struct {
	Value interface{} `json:"value" binding:"required"`
}

// The only message type carried on the sync channel today.
const MessageTypeSettingUpdated = "setting-updated"

// SyncMessage is the cross-instance broadcast payload. Origin identifies the
// publishing agent instance so it can skip its own echoes.
type SyncMessage struct {
	Type           string  `json:"type"`
	SectionPath    string  `json:"section_path"`
	SettingName    string  `json:"setting_name"`
	UpdatedSetting Setting `json:"updated_setting"`
	Origin         string  `json:"origin"`
}
