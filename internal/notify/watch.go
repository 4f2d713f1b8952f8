package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
)

// WatchProfile posts a notification each time the detected profile changes
// to a known value. It blocks until ctx is done or profiles is closed.
func WatchProfile(ctx context.Context, profiles <-chan profiler.Profile, n Notifier) error {
	last := profiler.Unknown
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-profiles:
			if !ok {
				return nil
			}
			if p == last {
				continue
			}
			last = p
			if p == profiler.Unknown {
				continue
			}
			n.Notify("carinfo", fmt.Sprintf("Vehicle profile detected: %s", p))
		}
	}
}

// PermissionsMissing tells the user which car-data permissions still need
// granting. Nothing is posted when the list is empty.
func PermissionsMissing(n Notifier, missing []permission.Permission) {
	if len(missing) == 0 {
		return
	}
	names := make([]string, len(missing))
	for i, p := range missing {
		names[i] = p.ShortName()
	}
	n.Notify("carinfo needs permissions", "Grant on your phone: "+strings.Join(names, ", "))
}
