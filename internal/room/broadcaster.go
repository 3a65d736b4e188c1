package room

import "link-cable/internal/shared"

// Handle pushes events to one connection. Deliver must not block and must not
// call back into the Manager; it is invoked while the Manager holds its lock.
type Handle interface {
	Deliver(msg shared.Response)
}
