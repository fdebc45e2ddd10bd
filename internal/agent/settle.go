// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package agent

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// CodeNotSettled marks integrations still unloaded after every attempt.
const CodeNotSettled = "INTEGRATIONS_NOT_SETTLED"

// Settle runs passes every interval until all enabled integrations have
// settled, at most attempts times in total.
func Settle(ctx context.Context, interval time.Duration, attempts uint64) error {
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewConstant(interval))

	return retry.Do(ctx, backoff, func(_ context.Context) error {
		Load()
		if Ready() {
			return nil
		}
		return retry.RetryableError(oops.Code(CodeNotSettled).
			With("pending", Get().Pending()).
			Errorf("integrations not settled"))
	})
}
