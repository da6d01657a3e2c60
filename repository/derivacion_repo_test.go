package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelydev/apiTramite/models"
)

func TestInboxQueryRecibidos(t *testing.T) {
	query, count, pageArgs, countArgs, err := inboxQuery(BandejaRecibidos, 3, Query{Limit: 6, Offset: 12})
	require.NoError(t, err)

	assert.Contains(t, query, " WHERE e.estado = $1 AND d.id_area_destino = $2 ORDER BY")
	assert.True(t, strings.HasSuffix(query, " LIMIT $3 OFFSET $4"), query)
	assert.NotContains(t, query, "NOT EXISTS")
	assert.Equal(t, []any{models.EstadoPendiente, 3, 6, 12}, pageArgs)

	assert.True(t, strings.HasPrefix(count, "SELECT COUNT(*) FROM derivacion d"), count)
	assert.True(t, strings.HasSuffix(count, " WHERE e.estado = $1 AND d.id_area_destino = $2"), count)
	assert.Equal(t, []any{models.EstadoPendiente, 3}, countArgs)
}

func TestInboxQueryRechazadosWithSearch(t *testing.T) {
	query, count, pageArgs, countArgs, err := inboxQuery(BandejaRechazados, 2, Query{Search: " 10% ", Limit: 6})
	require.NoError(t, err)

	where := " WHERE e.estado = $1 AND d.id_area_origen = $2" +
		" AND NOT EXISTS (SELECT 1 FROM derivacion d2 WHERE d2.id_documento = d.id_documento AND d2.id_derivacion > d.id_derivacion)" +
		` AND (unaccent(doc.numero_documento) ILIKE unaccent($3) ESCAPE '\' OR unaccent(doc.asunto) ILIKE unaccent($3) ESCAPE '\')`
	assert.Contains(t, query, where+" ORDER BY")
	assert.True(t, strings.HasSuffix(query, " LIMIT $4 OFFSET $5"), query)
	assert.True(t, strings.HasSuffix(count, where), count)

	assert.Equal(t, []any{models.EstadoRechazado, 2, `%10\%%`}, countArgs)
	assert.Equal(t, []any{models.EstadoRechazado, 2, `%10\%%`, 6, 0}, pageArgs)
}

func TestInboxQueryWithoutLimit(t *testing.T) {
	query, _, pageArgs, countArgs, err := inboxQuery(BandejaRecibidos, 1, Query{})
	require.NoError(t, err)
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, countArgs, pageArgs)
}

func TestInboxQueryUnknownBandeja(t *testing.T) {
	_, _, _, _, err := inboxQuery(Bandeja("pendientes"), 1, Query{})
	assert.ErrorIs(t, err, ErrInvalid)
}
