package parts

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
	"github.com/goayasushi/zaiko-be/internal/users"
)

type memoryRepo struct {
	mu     sync.Mutex
	rows   map[int64]Part
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Part)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	snapshot := make(map[int64]Part, len(r.rows))
	for id, row := range r.rows {
		snapshot[id] = row
	}
	r.mu.Unlock()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.mu.Lock()
		r.rows = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

func (r *memoryRepo) List(ctx context.Context, limit, offset int) ([]Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Part, 0, len(r.rows))
	for _, row := range r.rows {
		all = append(all, row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return Part{}, shared.ErrNotFound
	}
	return row, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Part) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	r.rows[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, p Part) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return Part{}, shared.ErrNotFound
	}
	r.rows[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return Part{}, shared.ErrNotFound
	}
	delete(r.rows, id)
	return row, nil
}

func (tx *memoryTx) LockIDs(ctx context.Context, ids []int64) ([]int64, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	var out []int64
	for _, id := range ids {
		if _, ok := tx.repo.rows[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (tx *memoryTx) ImageKeys(ctx context.Context, ids []int64) ([]string, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	var out []string
	for _, id := range ids {
		if row, ok := tx.repo.rows[id]; ok && row.Image != nil {
			out = append(out, *row.Image)
		}
	}
	return out, nil
}

func (tx *memoryTx) DeleteIDs(ctx context.Context, ids []int64) (int, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for _, id := range ids {
		delete(tx.repo.rows, id)
	}
	return len(ids), nil
}

type supplierStub struct {
	rows map[int64]suppliers.Supplier
}

func (s supplierStub) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := s.rows[id]
	return ok, nil
}

func (s supplierStub) Lookup(ctx context.Context, ids []int64) (map[int64]suppliers.Supplier, error) {
	out := make(map[int64]suppliers.Supplier)
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

type profileStub map[int64]users.Profile

func (p profileStub) Profiles(ctx context.Context, ids []int64) (map[int64]users.Profile, error) {
	out := make(map[int64]users.Profile)
	for _, id := range ids {
		if profile, ok := p[id]; ok {
			out[id] = profile
		}
	}
	return out, nil
}

type purgeSpy struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *purgeSpy) EnqueueImagePurge(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	return nil
}

type fixture struct {
	svc    *Service
	repo   *memoryRepo
	store  *storage.Local
	purger *purgeSpy
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)
	repo := newMemoryRepo()
	purger := &purgeSpy{}
	svc := NewService(repo, Options{
		Suppliers: supplierStub{rows: map[int64]suppliers.Supplier{
			1: {ID: 1, Name: "ヘッド工業"},
		}},
		Profiles: profileStub{
			1: {ID: 1, Email: "admin@example.com"},
			2: {ID: 2, Email: "staff@example.com"},
		},
		Store:  store,
		Purger: purger,
	})
	return fixture{svc: svc, repo: repo, store: store, purger: purger}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func partFields(overrides map[string]any) shared.Payload {
	p := shared.Payload{
		"name":          "ドライバーヘッド",
		"category":      "head",
		"supplier_id":   "1",
		"cost_price":    "12000.00",
		"selling_price": "18000",
	}
	for k, v := range overrides {
		if v == nil {
			delete(p, k)
			continue
		}
		p[k] = v
	}
	return p
}

func actor(id int64) context.Context {
	return internalShared.ContextWithActor(context.Background(), id)
}

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	var fe httpx.FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	require.Contains(t, fe[field], msg)
}

func TestCreatePart(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(map[string]any{"stock_quantity": ""})})
	require.NoError(t, err)
	require.Equal(t, "ドライバーヘッド", d.Name)
	require.Equal(t, "12000.00", d.CostPrice.StringFixed(2))
	require.Equal(t, int64(0), d.StockQuantity)
	require.Equal(t, int64(0), d.ReorderLevel)
	require.NotNil(t, d.Supplier)
	require.Equal(t, "ヘッド工業", d.Supplier.Name)
	require.NotNil(t, d.Creator)
	require.Equal(t, "admin@example.com", d.Creator.Email)
	require.Equal(t, d.Creator, d.Updater)
	require.Nil(t, d.Image)
}

func TestCreatePartValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		fields shared.Payload
		field  string
		msg    string
	}{
		{"negative cost", partFields(map[string]any{"cost_price": "-1"}), "cost_price", "この値は0.00以上にしてください。"},
		{"float quantity", partFields(map[string]any{"stock_quantity": "1.5"}), "stock_quantity", shared.MsgInvalidInteger},
		{"text quantity", partFields(map[string]any{"reorder_level": "many"}), "reorder_level", shared.MsgInvalidInteger},
		{"negative quantity", partFields(map[string]any{"stock_quantity": "-3"}), "stock_quantity", shared.MsgMinValue("0")},
		{"blank category", partFields(map[string]any{"category": ""}), "category", `""は有効な選択肢ではありません。`},
		{"unknown supplier", partFields(map[string]any{"supplier_id": "99"}), "supplier_id", `主キー "99" は不正です - データが存在しません。`},
		{"missing supplier", partFields(map[string]any{"supplier_id": nil}), "supplier_id", shared.MsgRequired},
		{"text supplier", partFields(map[string]any{"supplier_id": "abc"}), "supplier_id", "不正な型です。pk値が期待されますが、strが送られました。"},
		{"image as text", partFields(map[string]any{"image": "photo.png"}), "image", shared.MsgNotAFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(actor(1), shared.Request{Fields: tc.fields})
			requireFieldError(t, err, tc.field, tc.msg)
		})
	}
	total, _ := f.repo.Count(context.Background())
	require.Zero(t, total)
}

func TestCreatePartAcceptsZeroPrices(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(map[string]any{"cost_price": "0", "selling_price": "0.00"})})
	require.NoError(t, err)
	require.True(t, d.CostPrice.IsZero())
}

func TestCreatePartWithImage(t *testing.T) {
	f := newFixture(t)

	req := shared.Request{
		Fields: partFields(nil),
		Files:  map[string]shared.Upload{"image": {Filename: "head.png", Data: pngBytes(t)}},
		Form:   true,
	}
	d, err := f.svc.Create(actor(1), req)
	require.NoError(t, err)
	require.NotNil(t, d.Image)
	require.Regexp(t, `^parts/[0-9a-f-]{36}\.png$`, *d.Image)
	_, err = os.Stat(filepath.Join(f.store.Root, *d.Image))
	require.NoError(t, err)

	_, err = f.svc.Create(actor(1), shared.Request{
		Fields: partFields(map[string]any{"name": ""}),
		Files:  map[string]shared.Upload{"image": {Filename: "notes.txt", Data: []byte("plain text, not an image")}},
	})
	requireFieldError(t, err, "image", shared.MsgInvalidImage)
	requireFieldError(t, err, "name", shared.MsgBlank)
}

func TestUpdatePartStampsUpdater(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(nil)})
	require.NoError(t, err)

	updated, err := f.svc.Update(actor(2), created.ID, shared.Request{Fields: shared.Payload{"stock_quantity": "25"}}, true)
	require.NoError(t, err)
	require.Equal(t, int64(25), updated.StockQuantity)
	require.Equal(t, "ドライバーヘッド", updated.Name)
	require.Equal(t, "admin@example.com", updated.Creator.Email)
	require.Equal(t, "staff@example.com", updated.Updater.Email)

	_, err = f.svc.Update(actor(2), created.ID, shared.Request{Fields: shared.Payload{"name": "x"}}, false)
	requireFieldError(t, err, "category", shared.MsgRequired)

	_, err = f.svc.Update(actor(2), 404, shared.Request{Fields: partFields(nil)}, false)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReplacePartKeepsOmittedOptionalFields(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(map[string]any{
		"stock_quantity": "50",
		"reorder_level":  "10",
		"description":    "keep me",
	})})
	require.NoError(t, err)

	put, err := f.svc.Update(actor(2), created.ID, shared.Request{Fields: partFields(map[string]any{"name": "renamed"})}, false)
	require.NoError(t, err)
	require.Equal(t, "renamed", put.Name)
	require.Equal(t, int64(50), put.StockQuantity)
	require.Equal(t, int64(10), put.ReorderLevel)
	require.Equal(t, "keep me", put.Description)

	put, err = f.svc.Update(actor(2), created.ID, shared.Request{Fields: partFields(map[string]any{"stock_quantity": ""})}, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), put.StockQuantity)
	require.Equal(t, int64(10), put.ReorderLevel)
}

func TestReplacingImagePurgesPrevious(t *testing.T) {
	f := newFixture(t)
	upload := map[string]shared.Upload{"image": {Filename: "a.png", Data: pngBytes(t)}}

	created, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(nil), Files: upload})
	require.NoError(t, err)
	first := *created.Image

	replaced, err := f.svc.Update(actor(1), created.ID, shared.Request{Fields: shared.Payload{}, Files: upload}, true)
	require.NoError(t, err)
	require.NotEqual(t, first, *replaced.Image)
	require.Equal(t, []string{first}, f.purger.keys)

	cleared, err := f.svc.Update(actor(1), created.ID, shared.Request{Fields: shared.Payload{"image": nil}}, true)
	require.NoError(t, err)
	require.Nil(t, cleared.Image)
	require.Equal(t, []string{first, *replaced.Image}, f.purger.keys)
}

func TestDiscardFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	f.purger.err = errors.New("redis unavailable")

	created, err := f.svc.Create(actor(1), shared.Request{
		Fields: partFields(nil),
		Files:  map[string]shared.Upload{"image": {Filename: "a.png", Data: pngBytes(t)}},
	})
	require.NoError(t, err)
	path := filepath.Join(f.store.Root, *created.Image)

	require.NoError(t, f.svc.Delete(actor(1), created.ID))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestBulkDeleteParts(t *testing.T) {
	f := newFixture(t)
	upload := map[string]shared.Upload{"image": {Filename: "a.png", Data: pngBytes(t)}}

	withImage, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(nil), Files: upload})
	require.NoError(t, err)
	plain, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(nil)})
	require.NoError(t, err)
	kept, err := f.svc.Create(actor(1), shared.Request{Fields: partFields(nil)})
	require.NoError(t, err)

	_, err = f.svc.BulkDelete(actor(1), []int64{withImage.ID, 77})
	require.ErrorIs(t, err, shared.ErrMissingIDs)
	require.Empty(t, f.purger.keys)
	total, _ := f.repo.Count(context.Background())
	require.Equal(t, 3, total)

	n, err := f.svc.BulkDelete(actor(1), []int64{withImage.ID, plain.ID})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{*withImage.Image}, f.purger.keys)

	_, err = f.repo.Get(context.Background(), kept.ID)
	require.NoError(t, err)
}
