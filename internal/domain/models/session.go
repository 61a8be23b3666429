// File: internal/domain/models/session.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session is a browser session established when a claimed auth token is
// consumed by the polling endpoint. Sessions live in Redis with a TTL
// matching ExpiresAt.
type Session struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	DeviceInfo json.RawMessage `json:"device_info,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}
