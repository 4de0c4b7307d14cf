// Package lock serializes work on a single auction. Operations on
// distinct keys never wait on each other.
package lock

import "context"

// Locker grants exclusive access to a key until the returned unlock
// function is called.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
