package domain

import "time"

const (
	// ContentMaxChars bounds post and comment bodies
	ContentMaxChars     = 1000
	UsernameMinChars    = 3
	UsernameMaxChars    = 24
	DescriptionMaxChars = 250
	AvatarURLMaxChars   = 128

	// AvatarMaxBytes bounds avatar uploads
	AvatarMaxBytes = 2 * 1024 * 1024

	// DisplayPageSize is the number of feed entries revealed per page
	DisplayPageSize = 12

	// RefreshInterval is the background refresh period of feed views
	RefreshInterval = 20 * time.Second
)

// ClockObjectID is the shared system clock object passed to time-stamped entry functions
const ClockObjectID = "0x6"
