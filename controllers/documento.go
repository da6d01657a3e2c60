package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/storage"
	"github.com/kelydev/apiTramite/utils"
)

const msgDocumentoNoEncontrado = "Documento no encontrado"

// ArchivoStore is the part of the document repository the file endpoints need.
type ArchivoStore interface {
	Get(ctx context.Context, id int) (models.Documento, error)
	SetArchivo(ctx context.Context, id int, path *string) (*string, error)
}

// PrepareDocumento completes a decoded document before it is saved.
// New documents default to the caller's area and the current time; existing
// ones keep their area, which only derivations may change.
func PrepareDocumento(store repository.Store[models.Documento], now func() time.Time) func(*http.Request, models.Documento) (models.Documento, error) {
	return func(r *http.Request, d models.Documento) (models.Documento, error) {
		if d.ID != 0 {
			current, err := store.Get(r.Context(), d.ID)
			if err != nil {
				return d, err
			}
			d.IDArea = current.IDArea
			d.Archivo = current.Archivo
			if d.FechaRegistro.IsZero() {
				d.FechaRegistro = current.FechaRegistro
			}
			return d, nil
		}

		claims, ok := middleware.ClaimsFrom(r.Context())
		if !ok {
			return d, fmt.Errorf("documento sin usuario autenticado: %w", repository.ErrInvalid)
		}
		if d.IDArea == 0 || !claims.Actor().Admin {
			d.IDArea = claims.Area
		}
		if d.FechaRegistro.IsZero() {
			d.FechaRegistro = now()
		}
		d.Archivo = nil
		return d, nil
	}
}

// RemoveArchivo deletes the stored file of a deleted document.
func RemoveArchivo(files *storage.Files) func(context.Context, models.Documento) {
	return func(_ context.Context, d models.Documento) {
		if err := files.Remove(d.Archivo); err != nil {
			log.Warn().Err(err).Int("id_documento", d.ID).Msg("could not remove document file")
		}
	}
}

// ArchivoController uploads and downloads the PDF attached to a document.
type ArchivoController struct {
	Docs    ArchivoStore
	Files   *storage.Files
	Metrics *metrics.Metrics
}

func (c *ArchivoController) countUpload(status string) {
	if c.Metrics != nil {
		c.Metrics.Uploads.WithLabelValues(status).Inc()
	}
}

// Upload stores the multipart field "archivo" and replaces the previous file.
func (c *ArchivoController) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := c.Docs.Get(r.Context(), id); err != nil {
		respondError(w, r, err, msgDocumentoNoEncontrado)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.Files.MaxSize()+1<<20)
	file, header, err := r.FormFile("archivo")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.countUpload("too_large")
			utils.RespondError(w, http.StatusRequestEntityTooLarge, storage.ErrTooLarge.Error())
			return
		}
		c.countUpload("invalid")
		utils.RespondError(w, http.StatusBadRequest, "Se requiere el campo archivo")
		return
	}
	defer file.Close()

	saved, err := c.Files.SavePDF(file, header.Filename)
	switch {
	case errors.Is(err, storage.ErrNotPDF):
		c.countUpload("invalid")
		utils.RespondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, storage.ErrTooLarge):
		c.countUpload("too_large")
		utils.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		c.countUpload("error")
		respondError(w, r, err, "")
		return
	}

	old, err := c.Docs.SetArchivo(r.Context(), id, &saved)
	if err != nil {
		_ = c.Files.Remove(&saved)
		c.countUpload("error")
		respondError(w, r, err, msgDocumentoNoEncontrado)
		return
	}
	if err := c.Files.Remove(old); err != nil {
		log.Warn().Err(err).Int("id_documento", id).Msg("could not remove replaced file")
	}

	c.countUpload("ok")
	log.Info().Int("id_documento", id).Str("archivo", saved).Msg("document file uploaded")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"archivo": saved})
}

// Download streams the stored PDF.
func (c *ArchivoController) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := c.Docs.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgDocumentoNoEncontrado)
		return
	}
	if doc.Archivo == nil {
		utils.RespondError(w, http.StatusNotFound, "El documento no tiene archivo")
		return
	}

	f, err := c.Files.Open(*doc.Archivo)
	if err != nil {
		log.Error().Err(err).Int("id_documento", id).Msg("stored file unavailable")
		utils.RespondError(w, http.StatusNotFound, "El archivo del documento no está disponible")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(*doc.Archivo)))
	http.ServeContent(w, r, "", info.ModTime(), f)
}
