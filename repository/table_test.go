package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/kelydev/apiTramite/models"
)

func TestTableWhere(t *testing.T) {
	tb := NewCaserioRepo(nil).(*table[models.Caserio])

	clause, args := tb.where(Query{})
	assert.Empty(t, clause)
	assert.Empty(t, args)

	clause, args = tb.where(Query{Search: "  alto "})
	assert.Equal(t, ` WHERE (unaccent(nombre::text) ILIKE unaccent($1) ESCAPE '\')`, clause)
	assert.Equal(t, []any{"%alto%"}, args)

	clause, args = tb.where(Query{Search: "alto", Filters: map[string]int{"idCentroPoblado": 4, "unknown": 1}})
	assert.Equal(t, ` WHERE (unaccent(nombre::text) ILIKE unaccent($1) ESCAPE '\') AND id_centro_poblado = $2`, clause)
	assert.Equal(t, []any{"%alto%", 4}, args)
}

func TestTableWhereMultipleSearchColumns(t *testing.T) {
	tb := NewDocumentoRepo(nil).table
	clause, args := tb.where(Query{Search: "oficio", Filters: map[string]int{"idCategoria": 2, "idArea": 1}})
	assert.Equal(t, ` WHERE (unaccent(numero_documento::text) ILIKE unaccent($1) ESCAPE '\'`+
		` OR unaccent(asunto::text) ILIKE unaccent($1) ESCAPE '\')`+
		" AND id_area = $2 AND id_categoria = $3", clause)
	assert.Equal(t, []any{"%oficio%", 1, 2}, args)
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"oficio": "%oficio%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`c:\tmp`: `%c:\\tmp%`,
	}
	for term, want := range tests {
		assert.Equal(t, want, containsPattern(term), term)
	}

	_, args := NewAmbitoRepo(nil).(*table[models.Ambito]).where(Query{Search: "_"})
	assert.Equal(t, []any{`%\_%`}, args)
}

func TestTranslate(t *testing.T) {
	err := translate("inserting ambito", &pq.Error{Code: pqUniqueViolation, Constraint: "ambito_nombre_key"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "ambito_nombre_key")

	err = translate("deleting area", &pq.Error{Code: pqForeignKeyViolation})
	assert.ErrorIs(t, err, ErrConflict)

	base := errors.New("connection reset")
	err = translate("updating rol", base)
	assert.ErrorIs(t, err, base)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestUsuarioQueriesKeepActivoWhenOmitted(t *testing.T) {
	assert.Contains(t, usuarioInsert, "COALESCE($5::boolean, TRUE)")
	assert.Contains(t, usuarioUpdate, "activo = COALESCE($4::boolean, activo)")
	assert.Contains(t, usuarioUpdate, "WHERE id_usuario = $6")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
