package repository

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marsha5813/crge-historical-database/internal/common/explorererrors"
	"github.com/marsha5813/crge-historical-database/internal/explorer/configuration"
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
)

func newPostgrestTestRepository(baseUrl string) *PostgrestEntryRepository {
	return NewPostgrestEntryRepository(configuration.PostgrestConfig{
		BaseUrl:        baseUrl,
		AnonKey:        "anon-key",
		RequestTimeout: 5 * time.Second,
	}, "user-token")
}

func TestPostgrestGetEntries_RequestShape(t *testing.T) {
	var gotRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	_, err := r.GetEntries(ctx(), model.TableEnglish, model.FilterSpec{
		Country: "France",
		Period:  model.All,
		Section: "Treaties",
		Search:  "alliance",
	})
	require.NoError(t, err)
	require.NotNil(t, gotRequest)

	assert.Equal(t, "/English", gotRequest.URL.Path)
	query := gotRequest.URL.Query()
	assert.Equal(t, "section_num.asc,entry_num.asc", query.Get("order"))
	assert.Equal(t, "eq.France", query.Get("country"))
	assert.Equal(t, "", query.Get("period"))
	assert.Equal(t, "eq.Treaties", query.Get("section"))
	assert.Equal(t, "ilike.*alliance*", query.Get("entry"))

	assert.Equal(t, "anon-key", gotRequest.Header.Get("apikey"))
	assert.Equal(t, "Bearer user-token", gotRequest.Header.Get("Authorization"))
}

func TestPostgrestGetEntries_DecodesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"country":"France","period":"1800-1850","section":"Treaties","section_num":1,"entry_num":1,"entry":"The Treaty of X"},
			{"country":"France","period":"1800-1850","section":"Wars","section_num":2,"entry_num":1,"entry":"The War of Y"}
		]`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	rows, err := r.GetEntries(ctx(), model.TableEnglish, model.FilterSpec{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Treaties", rows[0].Section)
	assert.Equal(t, 1, rows[0].SectionNum)
	assert.Equal(t, "The Treaty of X", rows[0].Entry)
	assert.Equal(t, "Wars", rows[1].Section)
}

func TestPostgrestGetEntries_EmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	rows, err := r.GetEntries(ctx(), model.TableEnglish, model.FilterSpec{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPostgrestGetEntries_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	_, err := r.GetEntries(ctx(), model.TableEnglish, model.FilterSpec{})
	require.Error(t, err)
	assert.True(t, explorererrors.IsAuthError(err))
}

func TestPostgrestGetEntries_BackendRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	_, err := r.GetEntries(ctx(), model.TableEnglish, model.FilterSpec{})
	require.Error(t, err)

	var queryErr *explorererrors.ErrQueryFailed
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, model.TableEnglish, queryErr.Table)
	assert.False(t, explorererrors.IsAuthError(err))
}

func TestPostgrestListDistinctValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "country", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[
			{"country":"Prussia"},
			{"country":"Austria"},
			{"country":null},
			{"country":"Prussia"},
			{"country":"France"}
		]`))
	}))
	defer server.Close()

	r := newPostgrestTestRepository(server.URL)
	values, err := r.ListDistinctValues(ctx(), model.TableEnglish, "country")
	require.NoError(t, err)

	assert.Equal(t, []string{model.All, "Austria", "France", "Prussia"}, values)
}

func TestPostgrestListDistinctValues_RejectsUnknownColumn(t *testing.T) {
	r := newPostgrestTestRepository("http://localhost:0")
	_, err := r.ListDistinctValues(ctx(), model.TableEnglish, "entry")
	assert.Error(t, err)
}
