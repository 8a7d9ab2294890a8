package routes

import (
	"crypto/rand"
	"encoding/base32"
)

// newRequestID returns a short opaque identifier for diagnostics lookup
// (spec-supplemented feature, see DESIGN.md); not derived from payload
// content since repeated identical requests must still get distinct IDs.
func newRequestID() string {
	var b [10]byte
	_, _ = rand.Read(b[:])
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b[:])
}
