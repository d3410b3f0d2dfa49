package dashboard

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/foxzi/leadboard/internal/models"
)

// Lister lists a backend collection
type Lister[T any] interface {
	List(ctx context.Context, params url.Values) ([]T, error)
}

// Load fetches leads and emails for r concurrently and computes the metrics.
// The first failing fetch cancels the other.
func Load(ctx context.Context, leads Lister[models.Lead], emails Lister[models.Email], r Range) (Metrics, error) {
	var (
		leadList  []models.Lead
		emailList []models.Email
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leadList, err = leads.List(ctx, r.Query())
		if err != nil {
			return fmt.Errorf("load leads: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		emailList, err = emails.List(ctx, r.Query())
		if err != nil {
			return fmt.Errorf("load emails: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}

	return Compute(leadList, emailList), nil
}
