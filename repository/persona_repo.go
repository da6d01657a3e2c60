package repository

import (
	"database/sql"

	"github.com/kelydev/apiTramite/models"
)

// NewTrabajadorRepo returns the trabajador store, filterable by idArea.
func NewTrabajadorRepo(db *sql.DB) Store[models.Trabajador] {
	cols := []string{"nombres", "apellidos", "dni", "cargo", "id_area"}
	return &table[models.Trabajador]{
		db: db, name: "trabajador", idCol: "id_trabajador",
		cols: cols, writeCols: cols,
		search:  []string{"nombres", "apellidos", "dni"},
		filters: map[string]string{"idArea": "id_area"},
		orderBy: "apellidos, nombres",
		scan: func(row scanner) (models.Trabajador, error) {
			var t models.Trabajador
			err := row.Scan(&t.ID, &t.Nombres, &t.Apellidos, &t.DNI, &t.Cargo, &t.IDArea)
			return t, err
		},
		values: func(t models.Trabajador) []any {
			return []any{t.Nombres, t.Apellidos, t.DNI, t.Cargo, t.IDArea}
		},
	}
}

// NewRemitenteRepo returns the remitente store.
func NewRemitenteRepo(db *sql.DB) Store[models.Remitente] {
	cols := []string{"nombres", "apellidos", "dni", "telefono", "correo"}
	return &table[models.Remitente]{
		db: db, name: "remitente", idCol: "id_remitente",
		cols: cols, writeCols: cols,
		search:  []string{"nombres", "apellidos", "dni"},
		orderBy: "nombres, apellidos",
		scan: func(row scanner) (models.Remitente, error) {
			var r models.Remitente
			err := row.Scan(&r.ID, &r.Nombres, &r.Apellidos, &r.DNI, &r.Telefono, &r.Correo)
			return r, err
		},
		values: func(r models.Remitente) []any {
			return []any{r.Nombres, r.Apellidos, r.DNI, r.Telefono, r.Correo}
		},
	}
}
