package api

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CheckServerVersion returns ErrServerTooOld when server is below minimum.
// Both are semantic versions; a leading "v" is accepted.
func CheckServerVersion(server, minimum string) error {
	sv, err := semver.NewVersion(server)
	if err != nil {
		return fmt.Errorf("parsing server version %q: %w", server, err)
	}
	mv, err := semver.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("parsing minimum version %q: %w", minimum, err)
	}
	if sv.LessThan(mv) {
		return fmt.Errorf("%w: server %s, need %s", ErrServerTooOld, sv, mv)
	}
	return nil
}
