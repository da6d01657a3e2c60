package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelydev/apiTramite/models"
)

func matchArea(a models.Area, term string) bool {
	return models.ContainsFold(term, a.Nombre, a.Sigla)
}

func newAreaStore() *MemoryStore[models.Area] {
	return NewMemoryStore(matchArea,
		models.Area{Nombre: "Mesa de Partes", Sigla: "MP"},
		models.Area{Nombre: "Gerencia Municipal", Sigla: "GM"},
		models.Area{Nombre: "Desarrollo Urbano", Sigla: "GDU"},
		models.Area{Nombre: "Rentas", Sigla: "GR"},
		models.Area{Nombre: "Logística", Sigla: "LOG"},
	)
}

func TestMemoryStore_SeedAssignsIDs(t *testing.T) {
	s := NewMemoryStore(matchArea, models.Area{ID: 7, Nombre: "A"}, models.Area{Nombre: "B"})
	b, err := s.Get(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "B", b.Nombre)

	c, err := s.Create(context.Background(), models.Area{Nombre: "C"})
	require.NoError(t, err)
	assert.Equal(t, 9, c.ID)
}

func TestMemoryStore_ListPaginates(t *testing.T) {
	s := newAreaStore()
	ctx := context.Background()

	page, total, err := s.List(ctx, Query{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].ID)

	page, _, err = s.List(ctx, Query{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, total, err = s.List(ctx, Query{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)

	page, _, err = s.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func TestMemoryStore_Search(t *testing.T) {
	s := newAreaStore()
	page, total, err := s.List(context.Background(), Query{Search: "g", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, page, 4)
}

func TestMemoryStore_CreateAppendsAndUpdateReplacesInPlace(t *testing.T) {
	s := newAreaStore()
	ctx := context.Background()

	created, err := s.Create(ctx, models.Area{Nombre: "Secretaría General"})
	require.NoError(t, err)
	assert.Equal(t, 6, created.ID)
	assert.Equal(t, 6, s.Len())

	all, _, _ := s.List(ctx, Query{})
	assert.Equal(t, created, all[len(all)-1])

	_, err = s.Update(ctx, models.Area{ID: 2, Nombre: "Gerencia", Sigla: "GM"})
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
	all, _, _ = s.List(ctx, Query{})
	assert.Equal(t, "Gerencia", all[1].Nombre)

	_, err = s.Update(ctx, models.Area{ID: 99})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := newAreaStore()
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, 3))
	_, err := s.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 3), ErrNotFound)
	assert.Equal(t, 4, s.Len())
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	s := newAreaStore()
	page, _, _ := s.List(context.Background(), Query{Limit: 1})
	page[0].Nombre = "changed"
	got, _ := s.Get(context.Background(), 1)
	assert.Equal(t, "Mesa de Partes", got.Nombre)
}

func TestMemoryStore_NegativeOffsetStartsAtFirstRow(t *testing.T) {
	page, total, err := newAreaStore().List(context.Background(), Query{Limit: 2, Offset: -6})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, 1, page[0].ID)
}
