// SPDX-License-Identifier: GPL-3.0-or-later

package e2e

// ShowcaseProfile is the reference one-byte integrity profile used to
// exercise the E2E pipeline end to end.
//
// For a wire payload P of length >= 2: raw_e2e = P[0], expected = P[1] % 45;
// the check succeeds iff raw_e2e == expected, and on success the naked data
// slice is P[1:]. Compute mirrors this: it returns data[0] % 45.
type ShowcaseProfile struct{}

var _ Profile = ShowcaseProfile{}

const ShowcaseProfileID uint8 = 0x0A

func (ShowcaseProfile) ProfileID() uint8 { return ShowcaseProfileID }
func (ShowcaseProfile) Offset() uint32   { return 0 }
func (ShowcaseProfile) Size() uint8      { return 1 }

func (ShowcaseProfile) Check(payload []byte) (data []byte, rawE2E uint32, status Status) {
	if len(payload) == 0 {
		return nil, 0, StatusCrcError
	}
	rawE2E = uint32(payload[0])
	if len(payload) < 2 {
		return nil, rawE2E, StatusCrcError
	}
	expected := uint32(payload[1]) % 45
	if rawE2E != expected {
		return nil, rawE2E, StatusCrcError
	}
	return payload[1:], rawE2E, StatusNoError
}

func (ShowcaseProfile) Compute(data []byte) (rawE2E uint32, ok bool) {
	if len(data) == 0 {
		return 0, false
	}
	return uint32(data[0]) % 45, true
}
