// Package clock defines the time source used by components that need
// testable time.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
