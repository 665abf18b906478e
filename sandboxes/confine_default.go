//go:build !linux

package sandboxes

import "github.com/reusee/lud/logs"

func confine(logger logs.Logger, root string) error {
	logger.Warn("write confinement not supported on this platform", "root", root)
	return nil
}
