package request

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

// WaitGroupConcurrencyLimit is the  maximum number of concurrent requests in one WaitGroup.
const WaitGroupConcurrencyLimit = 8

// WaitGroup allows sending requests concurrently using Send method
// and wait until all requests are completed using the Wait method.
//
// The request starts immediately after calling the Send method.
// If an error occurs, sending will not stop, all requests will be sent.
// Wait method at the end returns all errors that have occurred, if any.
//
// If you need to schedule requests and send them later,
// or if you want to stop at the first error, use RunGroup instead.
type WaitGroup struct {
	ctx context.Context
	wg  *sync.WaitGroup     // wait for all
	sem *semaphore.Weighted // limit concurrency

	lock *sync.Mutex // for err
	err  *multierror.Error
}

// NewWaitGroup creates new WaitGroup.
func NewWaitGroup(ctx context.Context) *WaitGroup {
	return NewWaitGroupWithLimit(ctx, WaitGroupConcurrencyLimit)
}

// NewWaitGroupWithLimit creates new WaitGroup with given concurrent requests limit.
func NewWaitGroupWithLimit(ctx context.Context, limit int64) *WaitGroup {
	return &WaitGroup{ctx: ctx, wg: &sync.WaitGroup{}, sem: semaphore.NewWeighted(limit), lock: &sync.Mutex{}}
}

// Wait for all requests to complete. All errors that have occurred will be returned.
func (g *WaitGroup) Wait() error {
	g.wg.Wait()
	g.lock.Lock()
	defer g.lock.Unlock()
	// If there is only one error, then unwrap multierror
	if g.err != nil && len(g.err.Errors) == 1 {
		return g.err.Errors[0]
	}
	return g.err.ErrorOrNil()
}

// Send a concurrent request.
func (g *WaitGroup) Send(request Sendable) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		// Limit number of concurrent requests
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			// Ctx is done, the request is not sent
			g.addError(&TransportError{Err: err})
			return
		}
		defer g.sem.Release(1)

		if err := request.SendOrErr(g.ctx); err != nil {
			g.addError(err)
		}
	}()
}

func (g *WaitGroup) addError(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.err = multierror.Append(g.err, err)
}
