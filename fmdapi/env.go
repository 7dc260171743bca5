package fmdapi

import "os"

// MustEnv returns the value of the environment variable name and panics
// when it is unset or empty. Generated clients call it from package-level
// variable initialisers so missing credentials fail at program start.
func MustEnv(name string) string {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		panic("missing env var: " + name)
	}
	return v
}
