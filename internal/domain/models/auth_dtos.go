// File: internal/domain/models/auth_dtos.go
package models

// TelegramAuthRequest is the payload the bot relays to the backend once
// it has collected a token argument and the sender's Telegram identity.
// TelegramID is kept as a string on the wire and in storage.
type TelegramAuthRequest struct {
	Token      string `json:"token" binding:"required"`
	TelegramID string `json:"telegram_id" binding:"required"`
	Username   string `json:"username" binding:"required"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// LoginResponse is returned by the login endpoint: the freshly issued
// token and the bot deep link that carries it.
type LoginResponse struct {
	Token   string `json:"token"`
	BotLink string `json:"bot_link"`
}

// AuthStatusResponse is the polling contract of the session
// synchronizer. It never reports an error, only a boolean.
type AuthStatusResponse struct {
	IsAuthenticated bool `json:"is_authenticated"`
}
