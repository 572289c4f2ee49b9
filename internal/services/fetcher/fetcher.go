// Package fetcher pulls the full portfolio state from the broker into a
// single immutable snapshot, retrying each call under the same policy.
package fetcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kitefolio/internal/domain"
	"kitefolio/pkg/retrier"
)

const (
	// One initial attempt plus two retries per call, a second apart.
	maxRetries    = 2
	retryInterval = 1 * time.Second

	// Per-attempt budget so a stalled call cannot block the run forever.
	attemptTimeout = 15 * time.Second
)

// Client is the broker fetch surface. All four calls are opaque: they
// return provider-shaped rows plus the raw payload for debug echo.
type Client interface {
	Holdings(ctx context.Context) ([]domain.Holding, json.RawMessage, error)
	DayPositions(ctx context.Context) ([]domain.Position, json.RawMessage, error)
	NetPositions(ctx context.Context) ([]domain.Position, json.RawMessage, error)
	Funds(ctx context.Context) (domain.Funds, json.RawMessage, error)
}

// Fetcher wraps a Client with the retry policy.
type Fetcher struct {
	client  Client
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// New builds a Fetcher. retryable decides which fetch errors are worth
// another attempt; the policy applies uniformly to all four calls.
func New(client Client, retryable func(error) bool, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		retrier: retrier.New(
			retrier.WithMaxRetries(maxRetries),
			retrier.WithInterval(retryInterval),
			retrier.WithRetryIf(retryable),
		),
		logger: logger,
	}
}

// Snapshot fetches holdings, day and net positions and funds in order
// and stamps the result. The snapshot is complete or the run fails; no
// partial state escapes.
func (f *Fetcher) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	var err error

	snap.Holdings, snap.Raw.Holdings, err = fetch(ctx, f, "holdings", f.client.Holdings)
	if err != nil {
		return nil, errors.Wrap(err, "fetch holdings")
	}

	snap.DayPositions, snap.Raw.DayPositions, err = fetch(ctx, f, "day positions", f.client.DayPositions)
	if err != nil {
		return nil, errors.Wrap(err, "fetch day positions")
	}

	snap.NetPositions, snap.Raw.NetPositions, err = fetch(ctx, f, "net positions", f.client.NetPositions)
	if err != nil {
		return nil, errors.Wrap(err, "fetch net positions")
	}

	snap.Funds, snap.Raw.Margins, err = fetch(ctx, f, "funds", f.client.Funds)
	if err != nil {
		return nil, errors.Wrap(err, "fetch funds")
	}

	snap.CapturedAt = time.Now().In(domain.IST)
	return snap, nil
}

// fetched pairs one call's typed rows with its raw payload so a retried
// attempt replaces both or neither.
type fetched[T any] struct {
	rows T
	raw  json.RawMessage
}

func fetch[T any](ctx context.Context, f *Fetcher, what string,
	call func(ctx context.Context) (T, json.RawMessage, error)) (T, json.RawMessage, error) {

	attempt := 0
	res, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) (fetched[T], error) {
		attempt++
		ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		rows, raw, err := call(ctx)
		if err != nil {
			f.logger.Warn("fetch attempt failed",
				zap.String("call", what),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return fetched[T]{rows: rows, raw: raw}, err
	})
	return res.rows, res.raw, err
}
