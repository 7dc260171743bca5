// Package fmdapi is a client for the FileMaker Data API.
//
// An Adapter carries requests to the server: FetchAdapter signs in with a
// FileMaker account, OttoAdapter goes through an Otto proxy with an API
// key, and HostAdapter hands requests to a bridge registered by the host
// web viewer. Client wraps an adapter with the record types of one layout,
// as emitted by fmgen.
package fmdapi
