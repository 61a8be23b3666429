// File: internal/utils/device/device.go
package device

import (
	"github.com/mssola/user_agent"
)

// Info describes the client device a session was established from.
type Info struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	DeviceType     string `json:"device_type"`
	IsBot          bool   `json:"is_bot"`
}

// FromUserAgent parses a User-Agent header into device info.
func FromUserAgent(userAgentString string) *Info {
	ua := user_agent.New(userAgentString)
	browserName, browserVersion := ua.Browser()

	deviceType := "desktop"
	switch {
	case ua.Bot():
		deviceType = "bot"
	case ua.Mobile():
		deviceType = "mobile"
	}

	return &Info{
		Browser:        browserName,
		BrowserVersion: browserVersion,
		OS:             ua.OS(),
		DeviceType:     deviceType,
		IsBot:          ua.Bot(),
	}
}
