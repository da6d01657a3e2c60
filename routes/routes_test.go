package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/cache"
	"github.com/kelydev/apiTramite/controllers"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type noSesiones struct{}

func (noSesiones) FindSesionByUsername(context.Context, string) (*models.Sesion, error) {
	return nil, repository.ErrNotFound
}

func (noSesiones) GetSesion(context.Context, int) (*models.Sesion, error) {
	return nil, repository.ErrNotFound
}

type emptyWorkflow struct{}

func (emptyWorkflow) Derive(_ context.Context, d models.Derivacion, _ models.Actor) (models.Derivacion, error) {
	return d, repository.ErrNotFound
}

func (emptyWorkflow) Attend(context.Context, int, string, string, models.Actor) (models.DetalleDerivacion, error) {
	return models.DetalleDerivacion{}, repository.ErrNotFound
}

func (emptyWorkflow) Inbox(context.Context, repository.Bandeja, int, repository.Query) ([]models.DocumentoDerivado, int, error) {
	return nil, 0, nil
}

func (emptyWorkflow) History(context.Context, int) ([]models.DetalleDerivacion, error) {
	return nil, nil
}

func resource[T models.Entity[T]]() *controllers.Resource[T] {
	return &controllers.Resource[T]{Store: repository.NewMemoryStore[T](nil), NotFound: "no encontrado"}
}

func newRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("una-clave-de-pruebas-suficientemente-larga", time.Minute, time.Hour)
	h := Handlers{
		Tokens:       tokens,
		Health:       controllers.Health(okPinger{}),
		Auth:         &controllers.AuthController{Users: noSesiones{}, Tokens: tokens},
		Derivaciones: &controllers.DerivacionController{Store: emptyWorkflow{}},
		Catalogos: &controllers.CatalogController{
			Ambitos:        repository.NewMemoryStore[models.Ambito](nil),
			Categorias:     repository.NewMemoryStore[models.Categoria](nil),
			CentrosPoblado: repository.NewMemoryStore[models.CentroPoblado](nil),
			Caserios:       repository.NewMemoryStore[models.Caserio](nil),
			Areas:          repository.NewMemoryStore[models.Area](nil),
			Remitentes:     repository.NewMemoryStore[models.Remitente](nil),
			Cache:          cache.Noop{},
		},
		Ambitos:        resource[models.Ambito](),
		Categorias:     resource[models.Categoria](),
		CentrosPoblado: resource[models.CentroPoblado](),
		Caserios:       resource[models.Caserio](),
		Areas:          resource[models.Area](),
		Roles:          resource[models.Rol](),
		Trabajadores:   resource[models.Trabajador](),
		Usuarios:       resource[models.Usuario](),
		Remitentes:     resource[models.Remitente](),
		Documentos:     resource[models.Documento](),
	}
	return SetupRoutes(h), tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, rol string) string {
	t.Helper()
	pair, err := tokens.Issue(models.Sesion{UserID: 1, RolName: rol, AreaID: 1})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func do(router http.Handler, method, target, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(router, http.MethodPost, "/auth/login", "", `{"username":"x","password":"y"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	router, tokens := newRouter(t)

	rec := do(router, http.MethodGet, "/no-existe", bearer(t, tokens, "AREA"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"recurso no encontrado"}`, rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, tokens := newRouter(t)

	for _, path := range []string{"/documentos", "/areas", "/catalogos", "/documentos/recibidos", "/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, path, "", "").Code, path)
	}

	rec := do(router, http.MethodGet, "/areas", bearer(t, tokens, "AREA"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	router, tokens := newRouter(t)
	area := bearer(t, tokens, "AREA")
	admin := bearer(t, tokens, models.RolAdministrador)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/roles", area, "").Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodPost, "/roles", area, `{"nombre":"AUDITOR"}`).Code)
	assert.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/roles", admin, `{"nombre":"AUDITOR"}`).Code)

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/usuarios", area, "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/usuarios", admin, "").Code)
}

func TestInboxRoutesAreNotTakenForIDs(t *testing.T) {
	router, tokens := newRouter(t)
	authz := bearer(t, tokens, "AREA")

	rec := do(router, http.MethodGet, "/documentos/recibidos", authz, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = do(router, http.MethodGet, "/documentos/rechazados", authz, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLegacyRedirects(t *testing.T) {
	router, _ := newRouter(t)

	tests := map[string]string{
		"/documentos/lista":           "/documentos",
		"/usuarios/roles/lista":       "/roles",
		"/areas/lista":                "/areas",
		"/documentos/recibidos/lista": "/documentos/recibidos",
	}
	for from, to := range tests {
		rec := do(router, http.MethodGet, from, "", "")
		assert.Equal(t, http.StatusMovedPermanently, rec.Code, from)
		assert.Equal(t, to, rec.Header().Get("Location"), from)
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "documentos", Canonical("/documentos/lista/"))
	assert.Equal(t, "roles", Canonical("usuarios/roles/lista"))
	assert.Equal(t, "areas", Canonical(" areas "))
	assert.Equal(t, "desconocido", Canonical("desconocido"))
	assert.True(t, IsResource("centros-poblados"))
	assert.False(t, IsResource("documentos/lista"))
}
