package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/ktype-finder/engine/lookup"
	"github.com/WessleyAI/ktype-finder/engine/present"
	"github.com/WessleyAI/ktype-finder/pkg/natsutil"
	"github.com/WessleyAI/ktype-finder/pkg/resilience"
)

// Finder answers one lookup.
type Finder interface {
	Lookup(ctx context.Context, req lookup.Request) (present.Reply, error)
}

type localFinder struct {
	svc *lookup.Service
}

func (f *localFinder) Lookup(ctx context.Context, req lookup.Request) (present.Reply, error) {
	res, err := f.svc.Lookup(ctx, req)
	if err != nil {
		return present.Reply{}, err
	}
	return present.NewReply(res), nil
}

// errServiceDown replaces resilience.ErrOpen for the user.
var errServiceDown = errors.New("lookup service unavailable, retry shortly")

// remoteFinder sends lookups to the NATS responder. Transport failures open
// a breaker so an unreachable service fails fast instead of timing out on
// every query. Rejections from the service itself do not count.
type remoteFinder struct {
	nc      *nats.Conn
	breaker *resilience.Breaker
}

func newRemoteFinder(nc *nats.Conn, logger *slog.Logger) *remoteFinder {
	opts := resilience.DefaultOptions
	opts.Failure = func(err error) bool { return !natsutil.IsServiceError(err) }
	opts.OnChange = func(from, to resilience.State) {
		logger.Warn("lookup service breaker", "from", from.String(), "to", to.String())
	}
	return &remoteFinder{nc: nc, breaker: resilience.New(opts)}
}

func (f *remoteFinder) Lookup(ctx context.Context, req lookup.Request) (present.Reply, error) {
	reply, err := resilience.Do(ctx, f.breaker, func(ctx context.Context) (present.Reply, error) {
		return natsutil.Request[lookup.Request, present.Reply](ctx, f.nc, lookup.SubjectLookup, req)
	})
	if errors.Is(err, resilience.ErrOpen) {
		return reply, errServiceDown
	}
	return reply, err
}
