package controllers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

const msgDerivacionNoEncontrada = "Derivación no encontrada"

// DerivacionController exposes the document routing workflow and the area inboxes.
type DerivacionController struct {
	Store   repository.DerivacionStore
	Metrics *metrics.Metrics
}

func (c *DerivacionController) count(estado string) {
	if c.Metrics != nil {
		c.Metrics.Derivaciones.WithLabelValues(estado).Inc()
	}
}

func actorFrom(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "No autenticado")
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

// Derive sends a document from its current area to another one.
func (c *DerivacionController) Derive(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var d models.Derivacion
	if !utils.DecodeAndValidate(w, r, &d) {
		return
	}

	created, err := c.Store.Derive(r.Context(), d, actor)
	if err != nil {
		respondError(w, r, err, msgDocumentoNoEncontrado)
		return
	}
	c.count(models.EstadoPendiente)
	log.Info().
		Int("id_documento", created.IDDocumento).
		Int("origen", created.IDAreaOrigen).
		Int("destino", created.IDAreaDestino).
		Msg("document derived")
	utils.RespondJSON(w, http.StatusCreated, created)
}

// Receive confirms receipt of a pending derivation.
func (c *DerivacionController) Receive(w http.ResponseWriter, r *http.Request) {
	c.attend(w, r, models.EstadoRecibido)
}

// Reject returns a pending derivation to its origin with an observation.
func (c *DerivacionController) Reject(w http.ResponseWriter, r *http.Request) {
	c.attend(w, r, models.EstadoRechazado)
}

func (c *DerivacionController) attend(w http.ResponseWriter, r *http.Request, estado string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Receiving needs no body.
	var body models.Atencion
	if !utils.DecodeOptional(w, r, &body) {
		return
	}

	detalle, err := c.Store.Attend(r.Context(), id, estado, body.Observacion, actor)
	if err != nil {
		respondError(w, r, err, msgDerivacionNoEncontrada)
		return
	}
	c.count(estado)
	log.Info().Int("id_derivacion", id).Str("estado", estado).Int("user_id", actor.UserID).Msg("derivation attended")
	utils.RespondJSON(w, http.StatusOK, detalle)
}

// Inbox lists the caller's area inbox. Administrators may inspect another
// area with ?idArea=.
func (c *DerivacionController) Inbox(bandeja repository.Bandeja) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		areaID := actor.AreaID
		if actor.Admin {
			if v, err := strconv.Atoi(r.URL.Query().Get("idArea")); err == nil && v > 0 {
				areaID = v
			}
		}

		page, size := utils.GetPaginationParams(r)
		q := repository.Query{Search: searchTerm(r), Limit: size, Offset: utils.Offset(page, size)}
		items, total, err := c.Store.Inbox(r.Context(), bandeja, areaID, q)
		if err != nil {
			respondError(w, r, err, "")
			return
		}
		if last := utils.TotalPages(total, size); len(items) == 0 && last > 0 && page > last {
			page = last
			q.Offset = utils.Offset(page, size)
			if items, total, err = c.Store.Inbox(r.Context(), bandeja, areaID, q); err != nil {
				respondError(w, r, err, "")
				return
			}
		}
		utils.RespondJSON(w, http.StatusOK, utils.NewPage(items, total, page, size))
	}
}

// History lists every status record of a document's derivations, oldest first.
func (c *DerivacionController) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detalles, err := c.Store.History(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgDocumentoNoEncontrado)
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.ListResponse[models.DetalleDerivacion]{Data: detalles})
}
