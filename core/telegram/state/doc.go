// Package state keeps per-user dialogue sessions in memory.
// Sessions are not durable and never expire; a Store is injected into
// whatever routes updates rather than held in package globals.
package state
