package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kelydev/apiTramite/models"
)

// DerivacionStore is the derivation workflow persisted by DerivacionRepo.
type DerivacionStore interface {
	Derive(ctx context.Context, d models.Derivacion, actor models.Actor) (models.Derivacion, error)
	Attend(ctx context.Context, idDerivacion int, estado, observacion string, actor models.Actor) (models.DetalleDerivacion, error)
	Inbox(ctx context.Context, bandeja Bandeja, areaID int, q Query) ([]models.DocumentoDerivado, int, error)
	History(ctx context.Context, idDocumento int) ([]models.DetalleDerivacion, error)
}

// Bandeja selects one of the per-area document inboxes.
type Bandeja string

const (
	// BandejaRecibidos lists documents pending receipt by the area.
	BandejaRecibidos Bandeja = "recibidos"
	// BandejaRechazados lists the area's derivations rejected by their destination.
	BandejaRechazados Bandeja = "rechazados"
)

// DerivacionRepo implements DerivacionStore on PostgreSQL.
type DerivacionRepo struct {
	db *sql.DB
}

func NewDerivacionRepo(db *sql.DB) *DerivacionRepo {
	return &DerivacionRepo{db: db}
}

// Derive creates a derivation and its PENDIENTE detail in one transaction.
// The document row is locked so two concurrent derivations cannot both pass the pending check.
func (r *DerivacionRepo) Derive(ctx context.Context, d models.Derivacion, actor models.Actor) (models.Derivacion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return d, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var docArea int
	err = tx.QueryRowContext(ctx, `SELECT id_area FROM documento WHERE id_documento = $1 FOR UPDATE`, d.IDDocumento).Scan(&docArea)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, ErrNotFound
		}
		return d, fmt.Errorf("error locking documento: %w", err)
	}

	var pending bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM derivacion d JOIN v_derivacion_estado e ON e.id_derivacion = d.id_derivacion
		WHERE d.id_documento = $1 AND e.estado = $2)`, d.IDDocumento, models.EstadoPendiente).Scan(&pending)
	if err != nil {
		return d, fmt.Errorf("error checking pending derivations: %w", err)
	}

	if err := models.CheckDerive(actor, docArea, pending, d.IDAreaDestino); err != nil {
		return d, err
	}

	d.IDAreaOrigen = docArea
	d.IDUsuario = actor.UserID
	err = tx.QueryRowContext(ctx, `INSERT INTO derivacion (id_documento, id_area_origen, id_area_destino, id_usuario, observacion)
		VALUES ($1, $2, $3, $4, $5) RETURNING id_derivacion, fecha_derivacion`,
		d.IDDocumento, d.IDAreaOrigen, d.IDAreaDestino, d.IDUsuario, d.Observacion).Scan(&d.ID, &d.FechaDerivacion)
	if err != nil {
		return d, translate("inserting derivacion", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO detalle_derivacion (id_derivacion, estado, observacion, id_usuario)
		VALUES ($1, $2, $3, $4)`, d.ID, models.EstadoPendiente, d.Observacion, d.IDUsuario); err != nil {
		return d, translate("inserting detalle_derivacion", err)
	}

	if err := tx.Commit(); err != nil {
		return d, fmt.Errorf("error committing derivacion: %w", err)
	}
	return d, nil
}

// Attend appends a RECIBIDO or RECHAZADO detail to a pending derivation. Receiving
// moves the document to the destination area.
func (r *DerivacionRepo) Attend(ctx context.Context, idDerivacion int, estado, observacion string, actor models.Actor) (models.DetalleDerivacion, error) {
	det := models.DetalleDerivacion{IDDerivacion: idDerivacion, Estado: estado, Observacion: observacion, IDUsuario: actor.UserID}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return det, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var idDocumento, destino int
	err = tx.QueryRowContext(ctx, `SELECT id_documento, id_area_destino FROM derivacion WHERE id_derivacion = $1 FOR UPDATE`,
		idDerivacion).Scan(&idDocumento, &destino)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return det, ErrNotFound
		}
		return det, fmt.Errorf("error locking derivacion: %w", err)
	}

	var current string
	err = tx.QueryRowContext(ctx, `SELECT estado FROM v_derivacion_estado WHERE id_derivacion = $1`, idDerivacion).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return det, fmt.Errorf("error reading derivacion state: %w", err)
	}

	if err := models.CheckTransition(actor, destino, current, estado, observacion); err != nil {
		return det, err
	}

	err = tx.QueryRowContext(ctx, `INSERT INTO detalle_derivacion (id_derivacion, estado, observacion, id_usuario)
		VALUES ($1, $2, $3, $4) RETURNING id_detalle, fecha`,
		idDerivacion, estado, observacion, actor.UserID).Scan(&det.ID, &det.Fecha)
	if err != nil {
		return det, translate("inserting detalle_derivacion", err)
	}

	if estado == models.EstadoRecibido {
		if _, err := tx.ExecContext(ctx, `UPDATE documento SET id_area = $1, updated_at = CURRENT_TIMESTAMP WHERE id_documento = $2`,
			destino, idDocumento); err != nil {
			return det, fmt.Errorf("error moving documento: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return det, fmt.Errorf("error committing detalle_derivacion: %w", err)
	}
	return det, nil
}

const inboxSelect = `SELECT doc.id_documento, doc.numero_documento, doc.asunto, doc.folios, doc.fecha_registro,
	doc.id_remitente, doc.id_ambito, doc.id_categoria, doc.id_centro_poblado, doc.id_caserio, doc.id_area, doc.archivo,
	d.id_derivacion, d.id_area_origen, d.id_area_destino, e.estado, e.observacion, d.fecha_derivacion`

const inboxFrom = ` FROM derivacion d
	JOIN v_derivacion_estado e ON e.id_derivacion = d.id_derivacion
	JOIN documento doc ON doc.id_documento = d.id_documento`

// inboxQuery builds the page and count queries of an inbox. countArgs are
// the page arguments without LIMIT and OFFSET.
func inboxQuery(bandeja Bandeja, areaID int, q Query) (query, countQuery string, pageArgs, countArgs []any, err error) {
	var conditions []string
	estado := models.EstadoPendiente
	switch bandeja {
	case BandejaRecibidos:
		conditions = []string{"e.estado = $1", "d.id_area_destino = $2"}
	case BandejaRechazados:
		// A rejection stops showing once the origin derives the document again.
		estado = models.EstadoRechazado
		conditions = []string{"e.estado = $1", "d.id_area_origen = $2",
			"NOT EXISTS (SELECT 1 FROM derivacion d2 WHERE d2.id_documento = d.id_documento AND d2.id_derivacion > d.id_derivacion)"}
	default:
		return "", "", nil, nil, fmt.Errorf("%w: bandeja %q", ErrInvalid, bandeja)
	}
	countArgs = []any{estado, areaID}

	if term := strings.TrimSpace(q.Search); term != "" {
		conditions = append(conditions,
			`(unaccent(doc.numero_documento) ILIKE unaccent($3) ESCAPE '\' OR unaccent(doc.asunto) ILIKE unaccent($3) ESCAPE '\')`)
		countArgs = append(countArgs, containsPattern(term))
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	query = inboxSelect + inboxFrom + whereClause + " ORDER BY d.fecha_derivacion DESC, d.id_derivacion DESC"
	pageArgs = countArgs
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(countArgs)+1, len(countArgs)+2)
		pageArgs = append(append([]any{}, countArgs...), q.Limit, q.Offset)
	}
	return query, "SELECT COUNT(*)" + inboxFrom + whereClause, pageArgs, countArgs, nil
}

// Inbox lists the received or rejected documents of an area, newest derivation first.
func (r *DerivacionRepo) Inbox(ctx context.Context, bandeja Bandeja, areaID int, q Query) ([]models.DocumentoDerivado, int, error) {
	query, countQuery, pageArgs, countArgs, err := inboxQuery(bandeja, areaID, q)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying %s inbox: %w", bandeja, err)
	}
	defer rows.Close()

	items := []models.DocumentoDerivado{}
	for rows.Next() {
		var it models.DocumentoDerivado
		var caserio sql.NullInt64
		var archivo, obs sql.NullString
		if err := rows.Scan(&it.Documento.ID, &it.NumeroDocumento, &it.Asunto, &it.Folios, &it.FechaRegistro,
			&it.IDRemitente, &it.IDAmbito, &it.IDCategoria, &it.IDCentroPoblado, &caserio, &it.IDArea, &archivo,
			&it.IDDerivacion, &it.IDAreaOrigen, &it.IDAreaDestino, &it.Estado, &obs, &it.FechaDerivacion); err != nil {
			return nil, 0, fmt.Errorf("error scanning %s inbox row: %w", bandeja, err)
		}
		if caserio.Valid {
			v := int(caserio.Int64)
			it.IDCaserio = &v
		}
		if archivo.Valid {
			it.Archivo = &archivo.String
		}
		it.Observacion = obs.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error after iterating through %s inbox rows: %w", bandeja, err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting %s inbox: %w", bandeja, err)
	}
	return items, total, nil
}

// History returns every detail of every derivation of a document, oldest first.
func (r *DerivacionRepo) History(ctx context.Context, idDocumento int) ([]models.DetalleDerivacion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dd.id_detalle, dd.id_derivacion, dd.estado, COALESCE(dd.observacion, ''), dd.id_usuario, dd.fecha
		FROM detalle_derivacion dd
		JOIN derivacion d ON d.id_derivacion = dd.id_derivacion
		WHERE d.id_documento = $1
		ORDER BY dd.fecha, dd.id_detalle`, idDocumento)
	if err != nil {
		return nil, fmt.Errorf("error querying derivation history: %w", err)
	}
	defer rows.Close()

	detalles := []models.DetalleDerivacion{}
	for rows.Next() {
		var dd models.DetalleDerivacion
		if err := rows.Scan(&dd.ID, &dd.IDDerivacion, &dd.Estado, &dd.Observacion, &dd.IDUsuario, &dd.Fecha); err != nil {
			return nil, fmt.Errorf("error scanning derivation history row: %w", err)
		}
		detalles = append(detalles, dd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating through derivation history rows: %w", err)
	}
	return detalles, nil
}
