// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"errors"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
)

// ErrClassifier classifies errors into short categorical strings for
// structured logging, so dashboards and log queries can group on errClass
// without parsing free-form messages.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

func (f ErrClassifierFunc) Classify(err error) string { return f(err) }

// DefaultErrClassifier classifies the gateway's own error taxonomy.
// Unrecognized errors classify as "" so callers can still log %v.
var DefaultErrClassifier = ErrClassifierFunc(func(err error) string {
	if err == nil {
		return ""
	}
	var (
		wireErr    *gwerrors.WireError
		routingErr *gwerrors.RoutingError
		codecErr   *gwerrors.CodecError
		txErr      *gwerrors.TransportError
		offerErr   *gwerrors.OfferTransitionError
	)
	switch {
	case errors.As(err, &wireErr):
		return "wire"
	case errors.As(err, &routingErr):
		return "routing"
	case errors.As(err, &codecErr):
		return "codec"
	case errors.As(err, &txErr):
		return "transport"
	case errors.As(err, &offerErr):
		return "offer_transition"
	case errors.Is(err, e2e.ErrCrcError):
		return "crc"
	case e2e.IsSequenceError(err):
		return "sequence"
	case errors.Is(err, e2e.ErrLocalCheckFailed):
		return "local_check"
	default:
		return ""
	}
})
