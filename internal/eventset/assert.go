// SPDX-License-Identifier: GPL-3.0-or-later

package eventset

import "fmt"

// assertProfileID panics if an event's wired E2E profile does not report
// the id its wire codec was written against. A mismatch can only happen
// from a copy-paste error between a codec and its registration, so this
// runs from each event's package init() and fails fast at process start
// rather than on the first malformed payload.
func assertProfileID(event string, got, want uint8) {
	if got != want {
		panic(fmt.Sprintf("eventset: %s wired to profile id %#x, codec expects %#x", event, got, want))
	}
}
