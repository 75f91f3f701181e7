package types

import (
	"context"
	"sync"
)

// QueryMerger narrows a candidate set by intersecting it with the result of
// every added fetcher. Fetchers run concurrently. A fetcher returning nil
// places no constraint, so a merger without constraining fetchers leaves the
// candidates unchanged.
type QueryMerger struct {
	ctx    context.Context
	wg     sync.WaitGroup
	l      sync.Mutex
	result *ItemList
}

// NewQueryMerger starts from candidates, which is narrowed in place.
func NewQueryMerger(ctx context.Context, candidates *ItemList) *QueryMerger {
	return &QueryMerger{
		ctx:    ctx,
		result: candidates,
	}
}

func (m *QueryMerger) Add(getResult func(ctx context.Context) *ItemList) {
	m.wg.Go(func() {
		items := getResult(m.ctx)
		if items == nil {
			return
		}
		m.l.Lock()
		defer m.l.Unlock()
		m.result.Intersect(items)
	})
}

// Wait blocks until every fetcher has been merged.
func (m *QueryMerger) Wait() {
	m.wg.Wait()
}
