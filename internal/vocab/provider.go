// Package vocab adapts the externally-owned vocabulary source to the
// scheduler. Units and word stages reference book words by ordinal position
// only; this package is the single place that resolves those positions to
// actual word content.
package vocab

import (
	"context"
	"fmt"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/store"
)

// Provider exposes the two calls the scheduler needs from a vocabulary
// source: how many words a book has, and the words in an ordinal range.
type Provider interface {
	WordCount(ctx context.Context, bookID int64) (int, error)
	WordsInRange(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error)
}

type bookStore interface {
	GetWordCount(ctx context.Context, r store.GetWordCountRequest) (int, error)
	GetWordsInRange(ctx context.Context, r store.GetWordsInRangeRequest) ([]model.Word, error)
}

// StoreProvider reads the vocabulary tables directly.
type StoreProvider struct {
	store bookStore
}

func NewStoreProvider(s bookStore) *StoreProvider {
	return &StoreProvider{store: s}
}

func (p *StoreProvider) WordCount(ctx context.Context, bookID int64) (int, error) {
	count, err := p.store.GetWordCount(ctx, store.GetWordCountRequest{BookID: bookID})
	if err != nil {
		return 0, fmt.Errorf("word count for book %d: %w", bookID, err)
	}

	return count, nil
}

func (p *StoreProvider) WordsInRange(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error) {
	words, err := p.store.GetWordsInRange(ctx, store.GetWordsInRangeRequest{
		BookID:     bookID,
		StartOrder: startOrder,
		EndOrder:   endOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("words %d..%d of book %d: %w", startOrder, endOrder, bookID, err)
	}

	return words, nil
}
