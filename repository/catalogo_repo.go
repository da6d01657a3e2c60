package repository

import (
	"database/sql"

	"github.com/kelydev/apiTramite/models"
)

// NewAmbitoRepo returns the ámbito store.
func NewAmbitoRepo(db *sql.DB) Store[models.Ambito] {
	return &table[models.Ambito]{
		db: db, name: "ambito", idCol: "id_ambito",
		cols: []string{"nombre"}, writeCols: []string{"nombre"},
		search: []string{"nombre"}, orderBy: "nombre",
		scan: func(row scanner) (models.Ambito, error) {
			var a models.Ambito
			err := row.Scan(&a.ID, &a.Nombre)
			return a, err
		},
		values: func(a models.Ambito) []any { return []any{a.Nombre} },
	}
}

// NewCategoriaRepo returns the categoría store.
func NewCategoriaRepo(db *sql.DB) Store[models.Categoria] {
	return &table[models.Categoria]{
		db: db, name: "categoria", idCol: "id_categoria",
		cols: []string{"nombre"}, writeCols: []string{"nombre"},
		search: []string{"nombre"}, orderBy: "nombre",
		scan: func(row scanner) (models.Categoria, error) {
			var c models.Categoria
			err := row.Scan(&c.ID, &c.Nombre)
			return c, err
		},
		values: func(c models.Categoria) []any { return []any{c.Nombre} },
	}
}

// NewCentroPobladoRepo returns the centro poblado store.
func NewCentroPobladoRepo(db *sql.DB) Store[models.CentroPoblado] {
	return &table[models.CentroPoblado]{
		db: db, name: "centro_poblado", idCol: "id_centro_poblado",
		cols: []string{"nombre"}, writeCols: []string{"nombre"},
		search: []string{"nombre"}, orderBy: "nombre",
		scan: func(row scanner) (models.CentroPoblado, error) {
			var c models.CentroPoblado
			err := row.Scan(&c.ID, &c.Nombre)
			return c, err
		},
		values: func(c models.CentroPoblado) []any { return []any{c.Nombre} },
	}
}

// NewCaserioRepo returns the caserío store, filterable by idCentroPoblado.
func NewCaserioRepo(db *sql.DB) Store[models.Caserio] {
	return &table[models.Caserio]{
		db: db, name: "caserio", idCol: "id_caserio",
		cols:      []string{"nombre", "id_centro_poblado"},
		writeCols: []string{"nombre", "id_centro_poblado"},
		search:    []string{"nombre"},
		filters:   map[string]string{"idCentroPoblado": "id_centro_poblado"},
		orderBy:   "nombre",
		scan: func(row scanner) (models.Caserio, error) {
			var c models.Caserio
			err := row.Scan(&c.ID, &c.Nombre, &c.IDCentroPoblado)
			return c, err
		},
		values: func(c models.Caserio) []any { return []any{c.Nombre, c.IDCentroPoblado} },
	}
}

// NewAreaRepo returns the área store.
func NewAreaRepo(db *sql.DB) Store[models.Area] {
	return &table[models.Area]{
		db: db, name: "area", idCol: "id_area",
		cols: []string{"nombre", "sigla"}, writeCols: []string{"nombre", "sigla"},
		search: []string{"nombre", "sigla"}, orderBy: "nombre",
		scan: func(row scanner) (models.Area, error) {
			var a models.Area
			err := row.Scan(&a.ID, &a.Nombre, &a.Sigla)
			return a, err
		},
		values: func(a models.Area) []any { return []any{a.Nombre, a.Sigla} },
	}
}

// NewRolRepo returns the rol store.
func NewRolRepo(db *sql.DB) Store[models.Rol] {
	return &table[models.Rol]{
		db: db, name: "rol", idCol: "id_rol",
		cols: []string{"nombre"}, writeCols: []string{"nombre"},
		search: []string{"nombre"}, orderBy: "nombre",
		scan: func(row scanner) (models.Rol, error) {
			var r models.Rol
			err := row.Scan(&r.ID, &r.Nombre)
			return r, err
		},
		values: func(r models.Rol) []any { return []any{r.Nombre} },
	}
}
