// internal/client/settings.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"console-agent/internal/domain/settings"
)

func (b *Backend) GetSettings(ctx context.Context, sectionPath string) ([]settings.Setting, error) {
	var out []settings.Setting
	path := "/api/v1/settings/" + url.PathEscape(sectionPath)
	if err := b.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSetting writes one value and returns the confirmed setting as stored
// by the backend.
func (b *Backend) UpdateSetting(ctx context.Context, sectionPath, settingName string, value interface{}) (*settings.Setting, error) {
	path := fmt.Sprintf("/api/v1/settings/%s/%s", url.PathEscape(sectionPath), url.PathEscape(settingName))
	req := settings.UpdateRequest{Value: value}

	var out settings.Setting
	if err := b.do(ctx, http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
