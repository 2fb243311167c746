package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
	"github.com/marsha5813/crge-historical-database/internal/explorer/repository"
)

// FilterOptions holds the option lists for the three single-select filters.
// Each list is sorted ascending and begins with model.All.
type FilterOptions struct {
	Countries []string
	Periods   []string
	Sections  []string
}

// Pipeline resolves a FilterSpec into the two parallel result sets. It reads
// through whatever EntryRepository it is given, normally the TTL cache.
type Pipeline struct {
	repository repository.EntryRepository
}

func NewPipeline(repository repository.EntryRepository) *Pipeline {
	return &Pipeline{repository: repository}
}

// Options loads the filter option lists. Options come from the English table
// only, even though filters are later applied to both tables; the two tables
// are row-for-row parallel, so their filterable columns are assumed to agree.
func (p *Pipeline) Options(ctx context.Context) (*FilterOptions, error) {
	countries, err := p.repository.ListDistinctValues(ctx, model.TableEnglish, "country")
	if err != nil {
		return nil, err
	}
	periods, err := p.repository.ListDistinctValues(ctx, model.TableEnglish, "period")
	if err != nil {
		return nil, err
	}
	sections, err := p.repository.ListDistinctValues(ctx, model.TableEnglish, "section")
	if err != nil {
		return nil, err
	}
	return &FilterOptions{Countries: countries, Periods: periods, Sections: sections}, nil
}

// Retrieve fetches the matching rows of both tables. The two queries are
// independent and run concurrently; there is no snapshot guarantee between
// them, which is accepted for rarely-mutated reference data.
func (p *Pipeline) Retrieve(ctx context.Context, filter model.FilterSpec) (english []*model.Entry, original []*model.Entry, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		english, err = p.repository.GetEntries(ctx, model.TableEnglish, filter)
		return err
	})
	g.Go(func() error {
		var err error
		original, err = p.repository.GetEntries(ctx, model.TableOriginalLanguage, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return english, original, nil
}
