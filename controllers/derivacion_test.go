package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
)

// fakeWorkflow keeps derivations in memory and applies the same checks as the repository.
type fakeWorkflow struct {
	docArea  map[int]int
	derivs   map[int]models.Derivacion
	estado   map[int]string
	lastArea int
	lastQ    repository.Query
}

func newFakeWorkflow() *fakeWorkflow {
	return &fakeWorkflow{
		docArea: map[int]int{1: 2, 2: 3},
		derivs:  map[int]models.Derivacion{},
		estado:  map[int]string{},
	}
}

func (f *fakeWorkflow) pending(idDocumento int) bool {
	for id, d := range f.derivs {
		if d.IDDocumento == idDocumento && f.estado[id] == models.EstadoPendiente {
			return true
		}
	}
	return false
}

func (f *fakeWorkflow) Derive(_ context.Context, d models.Derivacion, actor models.Actor) (models.Derivacion, error) {
	area, ok := f.docArea[d.IDDocumento]
	if !ok {
		return d, repository.ErrNotFound
	}
	if err := models.CheckDerive(actor, area, f.pending(d.IDDocumento), d.IDAreaDestino); err != nil {
		return d, err
	}
	d.ID = len(f.derivs) + 1
	d.IDAreaOrigen = area
	d.IDUsuario = actor.UserID
	f.derivs[d.ID] = d
	f.estado[d.ID] = models.EstadoPendiente
	return d, nil
}

func (f *fakeWorkflow) Attend(_ context.Context, id int, estado, obs string, actor models.Actor) (models.DetalleDerivacion, error) {
	d, ok := f.derivs[id]
	if !ok {
		return models.DetalleDerivacion{}, repository.ErrNotFound
	}
	if err := models.CheckTransition(actor, d.IDAreaDestino, f.estado[id], estado, obs); err != nil {
		return models.DetalleDerivacion{}, err
	}
	f.estado[id] = estado
	if estado == models.EstadoRecibido {
		f.docArea[d.IDDocumento] = d.IDAreaDestino
	}
	return models.DetalleDerivacion{IDDerivacion: id, Estado: estado, Observacion: obs, IDUsuario: actor.UserID}, nil
}

func (f *fakeWorkflow) Inbox(_ context.Context, _ repository.Bandeja, areaID int, q repository.Query) ([]models.DocumentoDerivado, int, error) {
	f.lastArea, f.lastQ = areaID, q
	return []models.DocumentoDerivado{{IDDerivacion: 1, IDAreaDestino: areaID, Estado: models.EstadoPendiente}}, 1, nil
}

func (f *fakeWorkflow) History(_ context.Context, idDocumento int) ([]models.DetalleDerivacion, error) {
	if _, ok := f.docArea[idDocumento]; !ok {
		return nil, repository.ErrNotFound
	}
	return []models.DetalleDerivacion{{IDDerivacion: 1, Estado: models.EstadoPendiente}}, nil
}

func workflowRouter(c *DerivacionController) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/derivaciones", c.Derive).Methods(http.MethodPost)
	r.HandleFunc("/derivaciones/{id}/recibir", c.Receive).Methods(http.MethodPost)
	r.HandleFunc("/derivaciones/{id}/rechazar", c.Reject).Methods(http.MethodPost)
	r.HandleFunc("/documentos/recibidos", c.Inbox(repository.BandejaRecibidos)).Methods(http.MethodGet)
	r.HandleFunc("/documentos/{id}/historial", c.History).Methods(http.MethodGet)
	return r
}

func as(req *http.Request, userID, area int, rol string) *http.Request {
	claims := &auth.Claims{Rol: rol, Area: area}
	claims.Subject = strconv.Itoa(userID)
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestDeriveAndReceive(t *testing.T) {
	store := newFakeWorkflow()
	c := &DerivacionController{Store: store, Metrics: metrics.NewMetrics(prometheus.NewRegistry())}
	router := workflowRouter(c)

	rec := record(router, as(newRequest(http.MethodPost, "/derivaciones", `{"idDocumento":1,"idAreaDestino":3}`), 5, 2, "AREA"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var d models.Derivacion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 2, d.IDAreaOrigen)
	assert.Equal(t, 5, d.IDUsuario)

	// A second derivation while the first is pending is refused.
	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones", `{"idDocumento":1,"idAreaDestino":4}`), 5, 2, "AREA"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Only the destination area can receive.
	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/recibir", ""), 5, 2, "AREA"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/recibir", ""), 9, 3, "AREA"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, store.docArea[1])

	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/rechazar", `{"observacion":"tarde"}`), 9, 3, "AREA"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.Derivaciones.WithLabelValues(models.EstadoPendiente)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.Derivaciones.WithLabelValues(models.EstadoRecibido)))
}

func TestDeriveRules(t *testing.T) {
	tests := []struct {
		name string
		body string
		area int
		rol  string
		code int
	}{
		{"same area", `{"idDocumento":1,"idAreaDestino":2}`, 2, "AREA", http.StatusBadRequest},
		{"foreign area", `{"idDocumento":1,"idAreaDestino":4}`, 3, "AREA", http.StatusForbidden},
		{"admin bypasses area", `{"idDocumento":1,"idAreaDestino":4}`, 1, models.RolAdministrador, http.StatusCreated},
		{"unknown document", `{"idDocumento":99,"idAreaDestino":4}`, 2, "AREA", http.StatusNotFound},
		{"missing destination", `{"idDocumento":1}`, 2, "AREA", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := workflowRouter(&DerivacionController{Store: newFakeWorkflow()})
			rec := record(router, as(newRequest(http.MethodPost, "/derivaciones", tt.body), 1, tt.area, tt.rol))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRejectRequiresObservation(t *testing.T) {
	store := newFakeWorkflow()
	router := workflowRouter(&DerivacionController{Store: store})
	rec := record(router, as(newRequest(http.MethodPost, "/derivaciones", `{"idDocumento":2,"idAreaDestino":4}`), 1, 3, "AREA"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/rechazar", `{"observacion":"  "}`), 2, 4, "AREA"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/rechazar", `{"observacion":"Falta firma"}`), 2, 4, "AREA"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.EstadoRechazado, store.estado[1])
	assert.Equal(t, 3, store.docArea[2])
}

func TestInboxScopesToCallerArea(t *testing.T) {
	store := newFakeWorkflow()
	router := workflowRouter(&DerivacionController{Store: store})

	rec := record(router, as(newRequest(http.MethodGet, "/documentos/recibidos?idArea=9&q=oficio&pageSize=10", ""), 1, 4, "AREA"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, store.lastArea)
	assert.Equal(t, "oficio", store.lastQ.Search)
	assert.Equal(t, 10, store.lastQ.Limit)

	var page models.Page[models.DocumentoDerivado]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.TotalItems)

	record(router, as(newRequest(http.MethodGet, "/documentos/recibidos?idArea=9", ""), 1, 1, models.RolAdministrador))
	assert.Equal(t, 9, store.lastArea)
}

func TestHistory(t *testing.T) {
	router := workflowRouter(&DerivacionController{Store: newFakeWorkflow()})

	rec := serve(router, http.MethodGet, "/documentos/1/historial", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"estado":"PENDIENTE"`)

	rec = serve(router, http.MethodGet, "/documentos/50/historial", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflowRequiresClaims(t *testing.T) {
	router := workflowRouter(&DerivacionController{Store: newFakeWorkflow()})
	rec := serve(router, http.MethodPost, "/derivaciones", `{"idDocumento":1,"idAreaDestino":3}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceiveWithEmptyChunkedBody(t *testing.T) {
	store := newFakeWorkflow()
	c := &DerivacionController{Store: store, Metrics: metrics.NewMetrics(prometheus.NewRegistry())}
	router := workflowRouter(c)

	rec := record(router, as(newRequest(http.MethodPost, "/derivaciones", `{"idDocumento":1,"idAreaDestino":3}`), 5, 2, "AREA"))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := newRequest(http.MethodPost, "/derivaciones/1/recibir", "")
	req.ContentLength = -1
	rec = record(router, as(req, 9, 3, "AREA"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.EstadoRecibido, store.estado[1])

	rec = record(router, as(newRequest(http.MethodPost, "/derivaciones/1/recibir", "{"), 9, 3, "AREA"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
