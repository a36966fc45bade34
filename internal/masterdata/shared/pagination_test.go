package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
)

func TestResolvePage(t *testing.T) {
	cases := []struct {
		query string
		total int
		page  int
		err   bool
	}{
		{query: "", total: 30, page: 1},
		{query: "?page=2", total: 30, page: 2},
		{query: "?page=last", total: 45, page: 3},
		{query: "?page=1", total: 0, page: 1},
		{query: "?page=3", total: 30, err: true},
		{query: "?page=0", total: 30, err: true},
		{query: "?page=-1", total: 30, err: true},
		{query: "?page=abc", total: 30, err: true},
		{query: "?page=1.0", total: 30, err: true},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/masters/suppliers"+tc.query, nil)
		p, err := ResolvePage(r, tc.total)
		if tc.err {
			require.ErrorIs(t, err, internalShared.ErrInvalidPage, tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		require.Equal(t, tc.page, p.Page, tc.query)
		require.Equal(t, PageSize, p.PerPage)
	}
}

func TestEnvelopeLinks(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/masters/parts/?page=2&ordering=id", nil)
	p, err := ResolvePage(r, 45)
	require.NoError(t, err)

	env := NewEnvelope(r, p, []int{21, 22})
	require.Equal(t, 45, env.Count)
	require.Equal(t, 3, env.TotalPages)
	require.Equal(t, 2, env.Current)
	require.Equal(t, 20, env.PageSize)
	require.NotNil(t, env.Next)
	require.Equal(t, "http://api.example.com/api/masters/parts/?ordering=id&page=3", *env.Next)
	require.NotNil(t, env.Previous)
	require.Equal(t, "http://api.example.com/api/masters/parts/?ordering=id", *env.Previous)
}

func TestEnvelopeEmptySet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/masters/suppliers", nil)
	p, err := ResolvePage(r, 0)
	require.NoError(t, err)

	body, err := json.Marshal(NewEnvelope[string](r, p, nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"count":0,"total_pages":1,"current":1,"page_size":20,"next":null,"previous":null,"results":[]}`, string(body))
}

func TestRespondErrorInvalidPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/masters/suppliers?page=9", nil)
	_, err := ResolvePage(r, 1)

	rr := httptest.NewRecorder()
	RespondError(rr, err)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"detail":"不正なページです。"}`, rr.Body.String())
}
