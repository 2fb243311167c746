package repository

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"

	"github.com/marsha5813/crge-historical-database/internal/common/explorererrors"
	"github.com/marsha5813/crge-historical-database/internal/explorer/metrics"
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
)

var (
	// Columns shared by both entry tables
	col_country    = goqu.C(countryCol)
	col_period     = goqu.C(periodCol)
	col_section    = goqu.C(sectionCol)
	col_sectionNum = goqu.C(sectionNumCol)
	col_entryNum   = goqu.C(entryNumCol)
	col_entry      = goqu.C(entryCol)
)

// SQLEntryRepository queries the entry tables directly over a Postgres
// connection. Authorization is the connection's, not the signed-in user's;
// it exists for self-hosted deployments where the browser process owns the
// database.
type SQLEntryRepository struct {
	goquDb *goqu.Database
}

func NewSQLEntryRepository(db *sql.DB) *SQLEntryRepository {
	return &SQLEntryRepository{goquDb: goqu.New("postgres", db)}
}

func (r *SQLEntryRepository) ListDistinctValues(ctx context.Context, table string, column string) ([]string, error) {
	if err := validateTable(table); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgres", Cause: err}
	}
	if err := validateOptionColumn(column); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgres", Cause: err}
	}
	metrics.BackendQueries.WithLabelValues("listDistinctValues", table).Inc()

	ds := r.goquDb.
		From(goqu.T(table)).
		SelectDistinct(goqu.C(column)).
		Where(goqu.C(column).IsNotNull()).
		Order(goqu.C(column).Asc())

	values := make([]string, 0)
	if err := ds.Prepared(true).ScanValsContext(ctx, &values); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgres", Cause: err}
	}
	return toOptionList(values), nil
}

func (r *SQLEntryRepository) GetEntries(ctx context.Context, table string, filter model.FilterSpec) ([]*model.Entry, error) {
	if err := validateTable(table); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgres", Cause: err}
	}
	metrics.BackendQueries.WithLabelValues("queryEntries", table).Inc()

	rows := make([]*model.Entry, 0)
	err := r.entriesDataset(table, filter).Prepared(true).ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgres", Cause: err}
	}
	return rows, nil
}

func (r *SQLEntryRepository) entriesDataset(table string, filter model.FilterSpec) *goqu.SelectDataset {
	ds := r.goquDb.
		From(goqu.T(table)).
		Select(col_country, col_period, col_section, col_sectionNum, col_entryNum, col_entry)

	if filter.CountryActive() {
		ds = ds.Where(col_country.Eq(filter.Country))
	}
	if filter.PeriodActive() {
		ds = ds.Where(col_period.Eq(filter.Period))
	}
	if filter.SectionActive() {
		ds = ds.Where(col_section.Eq(filter.Section))
	}
	if filter.SearchActive() {
		ds = ds.Where(col_entry.ILike("%" + filter.Search + "%"))
	}

	return ds.Order(col_sectionNum.Asc(), col_entryNum.Asc())
}
