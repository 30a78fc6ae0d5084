// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying one bridge operation: one
// IngressBridge.ReceiveEvent dispatch, or one EgressBridge pump iteration.
//
// The bridges pass it as a "spanID" field on the log lines of that
// operation, so every such line - including a later error line - correlates.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
