package resolver

import "regexp"

const (
	minLocatorLen = 10
	maxLocatorLen = 2048
)

// locatorPattern accepts http/https URLs whose host is a dotted domain name,
// "localhost", or a dotted IPv4 address, with an optional port. Compiled once
// at process start and treated as immutable afterwards.
var locatorPattern = regexp.MustCompile(
	`^https?://` +
		`(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+` +
		`|localhost` +
		`|\d{1,3}(?:\.\d{1,3}){3})` +
		`(?::\d{1,5})?` +
		`(?:[/?#]\S*)?$`,
)

// ValidateLocator rejects input that cannot possibly name a remote media
// source, before any external call is attempted.
func ValidateLocator(raw string) error {
	if raw == "" {
		return ErrInvalidLocator
	}
	if len(raw) < minLocatorLen || len(raw) > maxLocatorLen {
		return ErrInvalidLocator
	}
	if !locatorPattern.MatchString(raw) {
		return ErrInvalidLocator
	}
	return nil
}
