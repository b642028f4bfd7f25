package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shree2124/NGOStream/internal/domain"
)

type openFunc func(ctx context.Context) (domain.DonationSource, func(context.Context) error, error)

// lazySource connects the donation store on the first fetch. A failed
// connect is not cached; the next fetch tries again.
type lazySource struct {
	open openFunc

	mu     sync.Mutex
	source domain.DonationSource
	closer func(context.Context) error
}

func newLazySource(open openFunc) *lazySource {
	return &lazySource{open: open}
}

func (l *lazySource) FetchDonations(ctx context.Context) ([]domain.Document, error) {
	source, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return source.FetchDonations(ctx)
}

func (l *lazySource) get(ctx context.Context) (domain.DonationSource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.source != nil {
		return l.source, nil
	}
	source, closer, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open donation source: %w", err)
	}
	l.source, l.closer = source, closer
	return source, nil
}

// Close releases the connection if one was opened.
func (l *lazySource) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer(ctx)
	l.source, l.closer = nil, nil
	return err
}
