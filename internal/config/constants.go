package config

import "time"

const (
	// Table rendering
	MaxTableRows    = 15
	MaxCellWidth    = 24
	MaxTableColumns = 6

	// Clarification options shown as buttons
	MaxClarifyOptions = 6

	// Session titles derived from the first query
	TitleMaxLen = 48

	// Sessions per page in /sessions
	SessionsPerPage = 5

	// Rate limits (per minute, per chat)
	RateLimitPerMinute = 10

	// Status message timing
	TypingInterval = 4 * time.Second
)
