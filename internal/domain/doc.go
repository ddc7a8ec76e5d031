// Package domain defines the clinic record types shared by every store.
//
// Records are explicit structs with typed fields. Persisted JSON is checked
// against an embedded CUE schema before decoding, and the two fields that
// historically arrived as form strings (ids and ages) are coerced to
// integers; any other shape is rejected at load time.
//
// The package also carries the static department list and the seed dataset
// used when a collection has never been persisted.
package domain
