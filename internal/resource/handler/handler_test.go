package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	partsJoin = resource.JoinSpec{Member: "parts", Column: "itemId"}
)

func fixtureStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore("items", "parts")
	ctx := context.Background()
	for _, d := range []resource.Document{
		{"id": "yammie1", "name": "YAMAHA", "model": "XJR1300"},
		{"id": "yammie2", "name": "YAMAHA WITH SPACE", "model": "XJR1300"},
		{"id": "bmw", "name": "BMW", "model": "R100", "active": true, "cc": float64(980)},
		{"id": "tx500", "name": "YAMAHA", "model": "TX500"},
	} {
		_, err := s.Insert(ctx, "items", d)
		require.NoError(t, err)
	}
	for _, d := range []resource.Document{
		{"name": "Scrambler seat", "desc": "Fits BMW models R100/7, R100RS, R100RT", "itemId": "bmw"},
		{"name": "Headlight", "itemId": "bmw"},
		{"name": "Exhaust", "itemId": "bmw"},
		{"name": "Tank", "itemId": "yammie1"},
	} {
		_, err := s.Insert(ctx, "parts", d)
		require.NoError(t, err)
	}
	return s
}

func newItems(t *testing.T) (*Handler, *repository.MemoryStore) {
	s := fixtureStore(t)
	h := New("items", s)
	h.now = func() time.Time { return fixedNow }
	return h, s
}

func withID(id string) Request { return Request{Params: map[string]string{"id": id}} }

func TestIndexReturnsAllDocuments(t *testing.T) {
	h, _ := newItems(t)
	out, err := h.Index(context.Background(), Request{}, resource.JoinSpec{})
	require.NoError(t, err)
	docs := out.([]resource.Document)
	ids := []string{}
	for _, d := range docs {
		ids = append(ids, d.ID())
	}
	assert.ElementsMatch(t, []string{"yammie1", "yammie2", "bmw", "tx500"}, ids)
}

func TestShow(t *testing.T) {
	h, _ := newItems(t)
	out, err := h.Show(context.Background(), withID("bmw"), resource.JoinSpec{})
	require.NoError(t, err)
	d := out.(resource.Document)
	assert.Equal(t, "BMW", d["name"])
	assert.Equal(t, "R100", d["model"])

	out, err = h.Show(context.Background(), withID("missing"), resource.JoinSpec{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPostThenShow(t *testing.T) {
	h, _ := newItems(t)
	ctx := context.Background()
	out, err := h.Post(ctx, Request{Body: resource.Document{"name": "BMW", "model": "R100"}}, resource.JoinSpec{})
	require.NoError(t, err)
	created := out.(resource.Document)
	require.NotEmpty(t, created.ID())
	assert.Equal(t, fixedNow, created["createdAt"])
	v, ok := created["updatedAt"]
	assert.True(t, ok)
	assert.Nil(t, v)

	shown, err := h.Show(ctx, withID(created.ID()), resource.JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, created, shown)
}

func TestTimestampsKeepMillisecondPrecision(t *testing.T) {
	h, _ := newItems(t)
	h.now = func() time.Time { return fixedNow.Add(1234567 * time.Nanosecond) }
	out, err := h.Post(context.Background(), Request{Body: resource.Document{"name": "BMW"}}, resource.JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Millisecond), out.(resource.Document)["createdAt"])
}

func TestPostKeepsCallerID(t *testing.T) {
	h, _ := newItems(t)
	out, err := h.Post(context.Background(), Request{Body: resource.Document{"id": "r90s", "name": "BMW"}}, resource.JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, "r90s", out.(resource.Document).ID())
}

func TestPostDoesNotMutateBody(t *testing.T) {
	h, _ := newItems(t)
	body := resource.Document{"name": "BMW"}
	_, err := h.Post(context.Background(), Request{Body: body}, resource.JoinSpec{})
	require.NoError(t, err)
	_, ok := body["createdAt"]
	assert.False(t, ok)
}

func TestPutMergesAndRefreshesUpdatedAt(t *testing.T) {
	h, _ := newItems(t)
	ctx := context.Background()
	created, err := h.Post(ctx, Request{Body: resource.Document{"name": "BMW", "model": "R100"}}, resource.JoinSpec{})
	require.NoError(t, err)
	id := created.(resource.Document).ID()

	later := fixedNow.Add(time.Hour)
	h.now = func() time.Time { return later }
	req := withID(id)
	req.Body = resource.Document{"model": "R80"}
	out, err := h.Put(ctx, req, resource.JoinSpec{})
	require.NoError(t, err)
	d := out.(resource.Document)
	assert.Equal(t, "R80", d["model"])
	assert.Equal(t, "BMW", d["name"])
	assert.Equal(t, fixedNow, d["createdAt"])
	assert.Equal(t, later, d["updatedAt"])
}

func TestPutMissingReturnsNil(t *testing.T) {
	h, _ := newItems(t)
	req := withID("missing")
	req.Body = resource.Document{"model": "R80"}
	out, err := h.Put(context.Background(), req, resource.JoinSpec{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDelete(t *testing.T) {
	h, _ := newItems(t)
	ctx := context.Background()
	out, err := h.Delete(ctx, withID("bmw"), resource.JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, true, out)

	shown, err := h.Show(ctx, withID("bmw"), resource.JoinSpec{})
	require.NoError(t, err)
	assert.Nil(t, shown)

	out, err = h.Delete(ctx, withID("bmw"), resource.JoinSpec{})
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestSearchCoercesValue(t *testing.T) {
	h, _ := newItems(t)
	ctx := context.Background()
	search := func(key, value string) []resource.Document {
		out, err := h.Search(ctx, Request{Params: map[string]string{"key": key, "value": value}}, resource.JoinSpec{})
		require.NoError(t, err)
		return out.([]resource.Document)
	}

	got := search("name", "YAMAHA WITH SPACE")
	require.Len(t, got, 1)
	assert.Equal(t, "yammie2", got[0].ID())

	assert.Len(t, search("name", "YAMAHA"), 2)
	assert.Len(t, search("active", "true"), 1)
	assert.Len(t, search("cc", "980"), 1)
	assert.Empty(t, search("cc", "981"))
}

func TestJoin(t *testing.T) {
	h, _ := newItems(t)
	out, err := h.Join(context.Background(), withID("bmw"), partsJoin)
	require.NoError(t, err)
	d := out.(resource.Document)
	assert.Equal(t, "BMW", d["name"])
	parts := d["parts"].([]resource.Document)
	names := []string{}
	for _, p := range parts {
		names = append(names, p["name"].(string))
	}
	assert.ElementsMatch(t, []string{"Scrambler seat", "Headlight", "Exhaust"}, names)
}

func TestJoinUnknownCollectionFails(t *testing.T) {
	h, _ := newItems(t)
	_, err := h.Join(context.Background(), withID("bmw"), resource.JoinSpec{Member: "wheels", Column: "itemId"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrCollectionNotFound))
}

func TestMember(t *testing.T) {
	h, _ := newItems(t)
	ctx := context.Background()
	out, err := h.Member(ctx, withID("bmw"), partsJoin)
	require.NoError(t, err)
	assert.Len(t, out.([]resource.Document), 3)

	out, err = h.Member(ctx, withID("tx500"), partsJoin)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out.([]resource.Document))

	_, err = h.Member(ctx, withID("bmw"), resource.JoinSpec{Member: "wheels", Column: "itemId"})
	assert.Error(t, err)
}
