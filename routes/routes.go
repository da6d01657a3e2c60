package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/controllers"
	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Tokens       *auth.TokenManager
	Metrics      *metrics.Metrics
	MetricsPage  http.Handler // GET /metrics
	Health       http.HandlerFunc
	LoginLimiter *middleware.RateLimiter // optional

	Auth         *controllers.AuthController
	Archivos     *controllers.ArchivoController
	Derivaciones *controllers.DerivacionController
	Catalogos    *controllers.CatalogController

	Ambitos        *controllers.Resource[models.Ambito]
	Categorias     *controllers.Resource[models.Categoria]
	CentrosPoblado *controllers.Resource[models.CentroPoblado]
	Caserios       *controllers.Resource[models.Caserio]
	Areas          *controllers.Resource[models.Area]
	Roles          *controllers.Resource[models.Rol]
	Trabajadores   *controllers.Resource[models.Trabajador]
	Usuarios       *controllers.Resource[models.Usuario]
	Remitentes     *controllers.Resource[models.Remitente]
	Documentos     *controllers.Resource[models.Documento]
}

// SetupRoutes configures the application routes.
func SetupRoutes(h Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recoverer, middleware.RequestLogger)
	if h.Metrics != nil {
		r.Use(middleware.Instrument(h.Metrics))
	}
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// --- Public routes ---
	if h.Health != nil {
		r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	}
	if h.MetricsPage != nil {
		r.Handle("/metrics", h.MetricsPage).Methods(http.MethodGet)
	}

	var login http.Handler = http.HandlerFunc(h.Auth.Login)
	if h.LoginLimiter != nil {
		login = h.LoginLimiter.Limit(login)
	}
	r.Handle("/auth/login", login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)

	// Old panel list pages.
	for from, to := range legacyPaths {
		r.Handle("/"+from, http.RedirectHandler("/"+to, http.StatusMovedPermanently)).Methods(http.MethodGet)
	}

	// --- Protected routes ---
	authRouter := r.PathPrefix("").Subrouter()
	authRouter.Use(middleware.JWTMiddleware(h.Tokens))

	adminRouter := r.PathPrefix("").Subrouter()
	adminRouter.Use(middleware.JWTMiddleware(h.Tokens), middleware.RequireRole(models.RolAdministrador))

	authRouter.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)
	authRouter.HandleFunc("/catalogos", h.Catalogos.Get).Methods(http.MethodGet)

	// Inboxes and workflow
	authRouter.HandleFunc("/documentos/recibidos", h.Derivaciones.Inbox(repository.BandejaRecibidos)).Methods(http.MethodGet)
	authRouter.HandleFunc("/documentos/rechazados", h.Derivaciones.Inbox(repository.BandejaRechazados)).Methods(http.MethodGet)
	authRouter.HandleFunc("/documentos/{id:[0-9]+}/historial", h.Derivaciones.History).Methods(http.MethodGet)
	authRouter.HandleFunc("/documentos/{id:[0-9]+}/archivo", h.Archivos.Upload).Methods(http.MethodPost)
	authRouter.HandleFunc("/documentos/{id:[0-9]+}/archivo", h.Archivos.Download).Methods(http.MethodGet)
	authRouter.HandleFunc("/derivaciones", h.Derivaciones.Derive).Methods(http.MethodPost)
	authRouter.HandleFunc("/derivaciones/{id:[0-9]+}/recibir", h.Derivaciones.Receive).Methods(http.MethodPost)
	authRouter.HandleFunc("/derivaciones/{id:[0-9]+}/rechazar", h.Derivaciones.Reject).Methods(http.MethodPost)

	// Resources
	crud(authRouter, authRouter, "/ambitos", h.Ambitos)
	crud(authRouter, authRouter, "/categorias", h.Categorias)
	crud(authRouter, authRouter, "/centros-poblados", h.CentrosPoblado)
	crud(authRouter, authRouter, "/caserios", h.Caserios)
	crud(authRouter, authRouter, "/areas", h.Areas)
	crud(authRouter, adminRouter, "/roles", h.Roles)
	crud(authRouter, authRouter, "/trabajadores", h.Trabajadores)
	crud(adminRouter, adminRouter, "/usuarios", h.Usuarios)
	crud(authRouter, authRouter, "/remitentes", h.Remitentes)
	crud(authRouter, authRouter, "/documentos", h.Documentos)

	return r
}

// crud registers the five resource operations, reads on read and mutations on write.
func crud[T models.Entity[T]](read, write *mux.Router, path string, res *controllers.Resource[T]) {
	item := path + "/{id:[0-9]+}"
	read.HandleFunc(path, res.List()).Methods(http.MethodGet)
	read.HandleFunc(item, res.Get()).Methods(http.MethodGet)
	write.HandleFunc(path, res.Create()).Methods(http.MethodPost)
	write.HandleFunc(item, res.Update()).Methods(http.MethodPut)
	write.HandleFunc(item, res.Delete()).Methods(http.MethodDelete)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusNotFound, "recurso no encontrado")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusMethodNotAllowed, "método no permitido")
}
