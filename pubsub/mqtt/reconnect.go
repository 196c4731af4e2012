package mqtt

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Reconnect schedule: 1s, 2s, 4s ... capped at 60s, 12 retries.
const (
	FirstReconnectDelay = time.Second
	ReconnectRate       = 2
	MaxReconnectDelay   = 60 * time.Second
	MaxReconnectCount   = 12
)

func ReconnectBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = FirstReconnectDelay
	b.Multiplier = ReconnectRate
	b.MaxInterval = MaxReconnectDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, MaxReconnectCount)
}
