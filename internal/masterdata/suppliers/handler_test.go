package suppliers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc, _, _ := newTestService(repo)
	r := chi.NewRouter()
	r.Route("/api/masters/suppliers", NewHandler(nil, svc).MountRoutes)
	return r, repo
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const supplierJSON = `{"name":"株式会社テスト","phone":"03-1234-5678","email":"info@example.co.jp","postal_code":"100-0001","prefecture":"東京都","city":"千代田区","town":"千代田1-1"}`

func TestSupplierCRUDOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := serve(h, http.MethodPost, "/api/masters/suppliers", supplierJSON)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, float64(1), created["id"])
	require.Nil(t, created["supplier_code"])
	require.Equal(t, "", created["remarks"])

	rr = serve(h, http.MethodGet, "/api/masters/suppliers/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, http.MethodPatch, "/api/masters/suppliers/1", `{"remarks":"月末締め"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "月末締め")

	rr = serve(h, http.MethodPut, "/api/masters/suppliers/1", `{"name":"x"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var fieldErrs map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fieldErrs))
	require.Equal(t, []string{"この項目は必須です。"}, fieldErrs["phone"])

	rr = serve(h, http.MethodDelete, "/api/masters/suppliers/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(h, http.MethodGet, "/api/masters/suppliers/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"detail":"見つかりませんでした。"}`, rr.Body.String())

	rr = serve(h, http.MethodGet, "/api/masters/suppliers/abc", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSupplierCreateRejectsMalformedJSON(t *testing.T) {
	h, repo := newTestRouter(t)

	rr := serve(h, http.MethodPost, "/api/masters/suppliers", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "JSON parse error")
	total, _ := repo.Count(context.Background())
	require.Zero(t, total)
}

func TestSupplierPagination(t *testing.T) {
	h, _ := newTestRouter(t)
	for i := 0; i < 30; i++ {
		rr := serve(h, http.MethodPost, "/api/masters/suppliers", supplierJSON)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	type page struct {
		Count      int              `json:"count"`
		TotalPages int              `json:"total_pages"`
		Current    int              `json:"current"`
		PageSize   int              `json:"page_size"`
		Next       *string          `json:"next"`
		Previous   *string          `json:"previous"`
		Results    []map[string]any `json:"results"`
	}

	rr := serve(h, http.MethodGet, "/api/masters/suppliers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var first page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Equal(t, 30, first.Count)
	require.Equal(t, 2, first.TotalPages)
	require.Equal(t, 1, first.Current)
	require.Equal(t, 20, first.PageSize)
	require.Len(t, first.Results, 20)
	require.Equal(t, float64(1), first.Results[0]["id"])
	require.NotNil(t, first.Next)
	require.Equal(t, "http://example.com/api/masters/suppliers?page=2", *first.Next)
	require.Nil(t, first.Previous)

	rr = serve(h, http.MethodGet, "/api/masters/suppliers?page=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var second page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	require.Len(t, second.Results, 10)
	require.Equal(t, 2, second.Current)
	require.Nil(t, second.Next)
	require.NotNil(t, second.Previous)

	rr = serve(h, http.MethodGet, "/api/masters/suppliers?page=3", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"detail":"不正なページです。"}`, rr.Body.String())
}

func TestSupplierBulkDeleteOverHTTP(t *testing.T) {
	h, repo := newTestRouter(t)
	for i := 0; i < 3; i++ {
		serve(h, http.MethodPost, "/api/masters/suppliers", supplierJSON)
	}

	rr := serve(h, http.MethodPost, "/api/masters/suppliers/bulk-delete", `{"ids":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":"削除対象のIDが指定されていません。"}`, rr.Body.String())

	rr = serve(h, http.MethodPost, "/api/masters/suppliers/bulk-delete", `{"ids":[1,42]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":"存在しないIDが含まれています。"}`, rr.Body.String())

	repo.references[3] = 2
	rr = serve(h, http.MethodPost, "/api/masters/suppliers/bulk-delete", `{"ids":[2,3]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":"この取引先は2件の部品から参照されているため削除できません。"}`, rr.Body.String())

	rr = serve(h, http.MethodPost, "/api/masters/suppliers/bulk-delete", `{"ids":[1,2]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"2件のデータを削除しました。","deleted_count":2}`, rr.Body.String())

	total, _ := repo.Count(context.Background())
	require.Equal(t, 1, total)
}
