package vocab

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/ganweibatao/DanDan-backend/internal/model"
)

// CachedProvider memoizes word counts. A book's word count is immutable for
// scheduling purposes, and every plan operation starts by asking for it, so
// this removes one query from nearly every request. Word content is not
// cached; ranges vary per unit and the rows are cheap indexed reads.
type CachedProvider struct {
	inner  Provider
	counts *ristretto.Cache[int64, int]
}

type CacheConfig struct {
	MaxBooks int64
	MaxCost  int64
}

func NewCachedProvider(inner Provider, cfg CacheConfig) *CachedProvider {
	c, err := ristretto.NewCache(&ristretto.Config[int64, int]{
		NumCounters: cfg.MaxBooks * 10,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create word count cache: %v", err))
	}

	return &CachedProvider{inner: inner, counts: c}
}

func (p *CachedProvider) WordCount(ctx context.Context, bookID int64) (int, error) {
	if count, found := p.counts.Get(bookID); found {
		return count, nil
	}

	count, err := p.inner.WordCount(ctx, bookID)
	if err != nil {
		return 0, err
	}

	p.counts.Set(bookID, count, 1)
	return count, nil
}

func (p *CachedProvider) WordsInRange(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error) {
	return p.inner.WordsInRange(ctx, bookID, startOrder, endOrder)
}
