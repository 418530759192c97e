package config

import "time"

// UI and display constants
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	PendingColor  = 0xFFA500
	ApprovedColor = 0x2ECC71
	DeniedColor   = 0xE74C3C

	QuestsPerPage = 9
)

// Timeouts
const (
	CommandTimeout     = 10 * time.Second
	StoreConnTimeout   = 30 * time.Second
	WebShutdownTimeout = 5 * time.Second
)

// BoardFileName is the attachment name for rendered boards, kept stable so
// pinned messages stay readable.
const BoardFileName = "current_quests.png"
