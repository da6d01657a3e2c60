package controllers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

const msgInternal = "Error interno del servidor"

// respondError maps repository and workflow errors onto HTTP responses.
// notFound is the message used for repository.ErrNotFound.
func respondError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondJSON(w, http.StatusBadRequest, utils.ErrorResponse{Message: "Datos inválidos", Fields: verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrInvalid),
		errors.Is(err, models.ErrMismaArea),
		errors.Is(err, models.ErrObservacionRequerida):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrAreaNoAutorizada):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, models.ErrDerivacionPendiente),
		errors.Is(err, models.ErrTransicionInvalida):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		utils.RespondError(w, http.StatusInternalServerError, msgInternal)
	}
}
