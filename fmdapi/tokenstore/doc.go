// Package tokenstore provides persistent fmdapi.TokenStore implementations
// for Data API session tokens: a JSON file, a SQLite table and Redis.
//
// Stores share session tokens across processes so short-lived programs do
// not open a new session on every run.
package tokenstore
