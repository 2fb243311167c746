package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/marsha5813/crge-historical-database/internal/common/explorererrors"
	"github.com/marsha5813/crge-historical-database/internal/explorer/configuration"
	"github.com/marsha5813/crge-historical-database/internal/explorer/metrics"
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
)

const maxErrorBodySize = 4096

var entrySelectList = strings.Join([]string{
	countryCol, periodCol, sectionCol, sectionNumCol, entryNumCol, entryCol,
}, ",")

// PostgrestEntryRepository queries a PostgREST endpoint, forwarding the
// signed-in user's bearer token with every request. A repository is bound to
// one token; build a new one whenever the session token changes.
type PostgrestEntryRepository struct {
	baseUrl string
	anonKey string
	token   string
	client  *http.Client
}

func NewPostgrestEntryRepository(config configuration.PostgrestConfig, token string) *PostgrestEntryRepository {
	return &PostgrestEntryRepository{
		baseUrl: strings.TrimSuffix(config.BaseUrl, "/"),
		anonKey: config.AnonKey,
		token:   token,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

func (r *PostgrestEntryRepository) ListDistinctValues(ctx context.Context, table string, column string) ([]string, error) {
	if err := validateTable(table); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	if err := validateOptionColumn(column); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	metrics.BackendQueries.WithLabelValues("listDistinctValues", table).Inc()

	params := url.Values{}
	params.Set("select", column)

	// PostgREST has no distinct; fetch the column and deduplicate here.
	var rows []map[string]*string
	if err := r.get(ctx, table, params, &rows); err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := row[column]; v != nil {
			values = append(values, *v)
		}
	}
	return toOptionList(values), nil
}

func (r *PostgrestEntryRepository) GetEntries(ctx context.Context, table string, filter model.FilterSpec) ([]*model.Entry, error) {
	if err := validateTable(table); err != nil {
		return nil, &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	metrics.BackendQueries.WithLabelValues("queryEntries", table).Inc()

	params := url.Values{}
	params.Set("select", entrySelectList)
	params.Set("order", sectionNumCol+".asc,"+entryNumCol+".asc")
	if filter.CountryActive() {
		params.Set(countryCol, "eq."+filter.Country)
	}
	if filter.PeriodActive() {
		params.Set(periodCol, "eq."+filter.Period)
	}
	if filter.SectionActive() {
		params.Set(sectionCol, "eq."+filter.Section)
	}
	if filter.SearchActive() {
		params.Set(entryCol, "ilike.*"+filter.Search+"*")
	}

	rows := make([]*model.Entry, 0)
	if err := r.get(ctx, table, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// get performs a single GET against baseUrl/table and decodes the JSON
// response into out. There is no retry; any failure is returned as-is.
func (r *PostgrestEntryRepository) get(ctx context.Context, table string, params url.Values, out interface{}) error {
	requestUrl := fmt.Sprintf("%s/%s?%s", r.baseUrl, url.PathEscape(table), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &explorererrors.ErrInvalidCredentials{Message: readErrorBody(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &explorererrors.ErrQueryFailed{
			Table:   table,
			Backend: "postgrest",
			Cause:   errors.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &explorererrors.ErrQueryFailed{Table: table, Backend: "postgrest", Cause: err}
	}
	return nil
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
