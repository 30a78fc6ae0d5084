// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartSpanReturnsNonNilSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	defer span.End()
	require.NotNil(t, ctx)
	require.NotNil(t, span)
}
