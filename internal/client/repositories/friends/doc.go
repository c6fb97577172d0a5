// Package friends persists the friends table of the local cache: one row
// per friend or pending invitation of a local account.
//
// Every write is a single statement so a concurrent reader in another
// process never observes a half-written row. Reads select explicit column
// lists and keep working when later migrations add columns.
//
// A miss is not an error: FetchOne returns (nil, nil).
package friends
