// Package storage defines the persistence contract for the nav service's
// key/value partition.
//
// Values are opaque byte payloads; callers own serialization. The image cache
// stores its whole name-to-entry table as one value under a fixed key, so
// concurrent writers for different names resolve by last-writer-wins at the
// table level. That tradeoff is part of the contract, not an implementation
// accident.
package storage
