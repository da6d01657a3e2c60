package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kelydev/apiTramite/models"
)

// DocumentoRepo stores documents and the path of their attached PDF.
type DocumentoRepo struct {
	*table[models.Documento]
}

// NewDocumentoRepo returns the documento store, filterable by area, ámbito, categoría and remitente.
func NewDocumentoRepo(db *sql.DB) *DocumentoRepo {
	writeCols := []string{
		"numero_documento", "asunto", "folios", "fecha_registro", "id_remitente",
		"id_ambito", "id_categoria", "id_centro_poblado", "id_caserio", "id_area",
	}
	return &DocumentoRepo{&table[models.Documento]{
		db: db, name: "documento", idCol: "id_documento",
		cols:      append(append([]string{}, writeCols...), "archivo"),
		writeCols: writeCols,
		search:    []string{"numero_documento", "asunto"},
		filters: map[string]string{
			"idArea":      "id_area",
			"idAmbito":    "id_ambito",
			"idCategoria": "id_categoria",
			"idRemitente": "id_remitente",
		},
		orderBy: "fecha_registro DESC, id_documento DESC",
		touch:   true,
		scan:    scanDocumento,
		values: func(d models.Documento) []any {
			return []any{d.NumeroDocumento, d.Asunto, d.Folios, d.FechaRegistro, d.IDRemitente,
				d.IDAmbito, d.IDCategoria, d.IDCentroPoblado, d.IDCaserio, d.IDArea}
		},
	}}
}

func scanDocumento(row scanner) (models.Documento, error) {
	var d models.Documento
	var caserio sql.NullInt64
	var archivo sql.NullString
	err := row.Scan(&d.ID, &d.NumeroDocumento, &d.Asunto, &d.Folios, &d.FechaRegistro, &d.IDRemitente,
		&d.IDAmbito, &d.IDCategoria, &d.IDCentroPoblado, &caserio, &d.IDArea, &archivo)
	if caserio.Valid {
		v := int(caserio.Int64)
		d.IDCaserio = &v
	}
	if archivo.Valid {
		d.Archivo = &archivo.String
	}
	return d, err
}

// SetArchivo stores the path of a document's file and returns the path it replaced.
func (r *DocumentoRepo) SetArchivo(ctx context.Context, id int, path *string) (*string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var old sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT archivo FROM documento WHERE id_documento = $1 FOR UPDATE`, id).Scan(&old)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error locking documento: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documento SET archivo = $1, updated_at = CURRENT_TIMESTAMP WHERE id_documento = $2`, path, id); err != nil {
		return nil, fmt.Errorf("error updating documento archivo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing documento archivo: %w", err)
	}
	if !old.Valid {
		return nil, nil
	}
	return &old.String, nil
}
