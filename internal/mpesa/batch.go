package mpesa

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// ParseAll parses texts concurrently, returning outcomes in input order.
// It stops early only when ctx is cancelled.
func (p *Parser) ParseAll(ctx context.Context, texts []string) ([]model.ParseOutcome, error) {
	outcomes := make([]model.ParseOutcome, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.Parse(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
