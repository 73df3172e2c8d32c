package services

import "errors"

// Error taxonomy surfaced to handlers. Storage failures wrap
// store.ErrUnavailable; absent records are not errors, they read as zero.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAmount      = errors.New("intake amount must be a positive number of milliliters")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeatherUnavailable = errors.New("weather data unavailable")
)
