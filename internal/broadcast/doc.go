// Package broadcast implements the subscriber registry and its fan-out.
//
// Membership lives in a map guarded by an RWMutex. Fanout copies a snapshot under the read
// lock and sends without holding any lock, so a slow subscriber never stalls registration or
// delivery to others. Subscribers whose send fails are evicted and closed.
package broadcast
