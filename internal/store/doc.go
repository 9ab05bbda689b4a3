// Package store provides file-based persistence for rechat's local data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Writes go to a temp file that is renamed into place, so a
// crash never leaves a half-written file behind.
//
// The package includes stores for:
//   - The local chat identity (IdentityFileStore)
//   - Images received from peers (ImageDirStore)
package store
