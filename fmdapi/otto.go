package fmdapi

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultOtto3Port is the port Otto v3 proxies the Data API on.
const DefaultOtto3Port = 3030

// OttoAPIKey is an Otto proxy API key: "KEY_..." for Otto v3, "dk_..." for OttoFMS.
type OttoAPIKey string

// IsOtto3 reports whether the key is an Otto v3 key.
func (k OttoAPIKey) IsOtto3() bool { return strings.HasPrefix(string(k), "KEY_") }

// IsOttoFMS reports whether the key is an OttoFMS data key.
func (k OttoAPIKey) IsOttoFMS() bool { return strings.HasPrefix(string(k), "dk_") }

// Valid reports whether the key has a known prefix.
func (k OttoAPIKey) Valid() bool { return k.IsOtto3() || k.IsOttoFMS() }

// OttoOptions configures an adapter that authenticates through the Otto proxy.
type OttoOptions struct {
	BaseOptions
	APIKey OttoAPIKey
	// Port overrides DefaultOtto3Port. Only used with Otto v3 keys.
	Port int
}

// OttoAdapter is a session-less Adapter authenticated with an Otto API key.
type OttoAdapter struct {
	*httpAdapter
	key OttoAPIKey
}

// NewOttoAdapter returns an adapter for the Otto proxy in front of the server.
func NewOttoAdapter(opts OttoOptions) (*OttoAdapter, error) {
	if !opts.APIKey.Valid() {
		return nil, fmt.Errorf("fmdapi: invalid Otto API key format, must start with 'KEY_' (Otto v3) or 'dk_' (OttoFMS)")
	}
	h, err := newHTTPAdapter(opts.BaseOptions)
	if err != nil {
		return nil, err
	}
	switch {
	case opts.APIKey.IsOtto3():
		port := opts.Port
		if port == 0 {
			port = DefaultOtto3Port
		}
		h.base.Host = net.JoinHostPort(h.base.Hostname(), strconv.Itoa(port))
	case opts.APIKey.IsOttoFMS():
		h.base.Path = "/otto" + h.base.Path
	}
	a := &OttoAdapter{httpAdapter: h, key: opts.APIKey}
	h.token = func(context.Context, bool) (string, error) {
		return string(a.key), nil
	}
	return a, nil
}

// MustOttoAdapter is like NewOttoAdapter but panics on error. Generated
// clients use it at package initialisation.
func MustOttoAdapter(opts OttoOptions) *OttoAdapter {
	a, err := NewOttoAdapter(opts)
	if err != nil {
		panic(err)
	}
	return a
}
