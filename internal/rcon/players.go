package rcon

import (
	"regexp"

	"github.com/leighmacdonald/steamid/v2/steamid"
)

// Platforms a player id can belong to.
const (
	PlatformSteam   = "steam"
	PlatformWindows = "windows"
	PlatformUnknown = "unknown"
)

// Non-Steam players are identified by a 32 character hex id.
var windowsIDRe = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// Platform classifies a host player id.
func Platform(playerID string) string {
	if _, err := steamid.SID64FromString(playerID); err == nil && len(playerID) == 17 {
		return PlatformSteam
	}
	if windowsIDRe.MatchString(playerID) {
		return PlatformWindows
	}
	return PlatformUnknown
}

// ValidPlayerID reports whether playerID looks like an id the host issues.
func ValidPlayerID(playerID string) bool {
	return Platform(playerID) != PlatformUnknown
}
