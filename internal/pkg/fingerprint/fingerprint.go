// internal/pkg/fingerprint/fingerprint.go
package fingerprint

import (
	"os"
	"os/user"
	"runtime"
	"time"
)

// Fingerprint is a snapshot of host characteristics sent alongside refresh
// requests as a soft anti-replay signal. It is recomputed fresh on every
// refresh attempt and never persisted. It is NOT an identity credential and
// must never gate an access-control decision.
//
// Display-related fields exist for parity with GUI consumers embedding the
// agent; headless runs leave them zero.
type Fingerprint struct {
	ScreenWidth      int    `json:"screen_width"`
	ScreenHeight     int    `json:"screen_height"`
	ColorDepth       int    `json:"color_depth"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	UserAgent        string `json:"user_agent"`
	CanvasSignature  string `json:"canvas_signature"`
	RendererVendor   string `json:"renderer_vendor"`
	RendererName     string `json:"renderer_name"`
	TouchSupport     bool   `json:"touch_support"`
	HardwareThreads  int    `json:"hardware_threads"`
	DeviceMemoryGB   int    `json:"device_memory_gb"`
	MaxTouchPoints   int    `json:"max_touch_points"`
	Platform         string `json:"platform"`
	Hostname         string `json:"hostname"`
	OSUser           string `json:"os_user"`
}

// AgentVersion is stamped at build time via -ldflags and reported as the
// user-agent analog.
var AgentVersion = "dev"

// Generate collects host signals best-effort. Any signal that cannot be
// obtained degrades to its zero value rather than failing the snapshot.
func Generate() Fingerprint {
	fp := Fingerprint{
		UserAgent:       "console-agent/" + AgentVersion,
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		HardwareThreads: runtime.NumCPU(),
	}

	if zone, _ := time.Now().Zone(); zone != "" {
		fp.Timezone = zone
	}
	if lang := os.Getenv("LANG"); lang != "" {
		fp.Language = lang
	}
	if host, err := os.Hostname(); err == nil {
		fp.Hostname = host
	}
	if u, err := user.Current(); err == nil {
		fp.OSUser = u.Username
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fp.DeviceMemoryGB = int(mem.Sys >> 30)

	return fp
}
