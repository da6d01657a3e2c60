package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/cache"
	"github.com/kelydev/apiTramite/config"
	"github.com/kelydev/apiTramite/controllers"
	"github.com/kelydev/apiTramite/database"
	"github.com/kelydev/apiTramite/logging"
	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/routes"
	"github.com/kelydev/apiTramite/storage"
	"github.com/kelydev/apiTramite/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config) error {
	log.Info().Str("environment", cfg.Environment).Msg("starting server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.DefaultPageSize = cfg.Pagination.DefaultSize
	utils.MaxPageSize = cfg.Pagination.MaxSize

	db, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	usuarios := repository.NewUsuarioRepo(db, cfg.Auth.BcryptCost)
	if cfg.Auth.BootstrapPassword != "" {
		created, err := usuarios.EnsureAdmin(ctx, cfg.Auth.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("failed to create bootstrap administrator: %w", err)
		}
		if created {
			log.Warn().Msg("bootstrap user 'admin' created; change its password")
		}
	}

	var catalogCache cache.Cache = cache.Noop{}
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		} else {
			defer rc.Close()
			catalogCache = rc
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	h := newHandlers(db, cfg, usuarios, catalogCache, m)
	h.MetricsPage = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	if cfg.RateLimiter.Enabled {
		h.LoginLimiter = middleware.NewRateLimiter(ctx, cfg.RateLimiter.RPS, cfg.RateLimiter.Burst, m)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(routes.SetupRoutes(h)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.Server.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHandlers(db *sql.DB, cfg *config.Config, usuarios *repository.UsuarioRepo, c cache.Cache, m *metrics.Metrics) routes.Handlers {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	files := storage.NewFiles(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	documentos := repository.NewDocumentoRepo(db)

	ambitos := repository.NewAmbitoRepo(db)
	categorias := repository.NewCategoriaRepo(db)
	centros := repository.NewCentroPobladoRepo(db)
	caserios := repository.NewCaserioRepo(db)
	areas := repository.NewAreaRepo(db)
	remitentes := repository.NewRemitenteRepo(db)

	catalogos := &controllers.CatalogController{
		Ambitos:        ambitos,
		Categorias:     categorias,
		CentrosPoblado: centros,
		Caserios:       caserios,
		Areas:          areas,
		Remitentes:     remitentes,
		Cache:          c,
		TTL:            cfg.Redis.CatalogTTL,
		Metrics:        m,
	}

	return routes.Handlers{
		Tokens:  tokens,
		Metrics: m,
		Health:  controllers.Health(db),

		Auth:         &controllers.AuthController{Users: usuarios, Tokens: tokens, Metrics: m},
		Archivos:     &controllers.ArchivoController{Docs: documentos, Files: files, Metrics: m},
		Derivaciones: &controllers.DerivacionController{Store: repository.NewDerivacionRepo(db), Metrics: m},
		Catalogos:    catalogos,

		Ambitos:        &controllers.Resource[models.Ambito]{Store: ambitos, NotFound: "Ámbito no encontrado", AfterChange: catalogos.Invalidate},
		Categorias:     &controllers.Resource[models.Categoria]{Store: categorias, NotFound: "Categoría no encontrada", AfterChange: catalogos.Invalidate},
		CentrosPoblado: &controllers.Resource[models.CentroPoblado]{Store: centros, NotFound: "Centro poblado no encontrado", AfterChange: catalogos.Invalidate},
		Caserios: &controllers.Resource[models.Caserio]{
			Store: caserios, NotFound: "Caserío no encontrado", AfterChange: catalogos.Invalidate,
			Filters: []string{"idCentroPoblado"},
		},
		Areas:      &controllers.Resource[models.Area]{Store: areas, NotFound: "Área no encontrada", AfterChange: catalogos.Invalidate},
		Roles:      &controllers.Resource[models.Rol]{Store: repository.NewRolRepo(db), NotFound: "Rol no encontrado"},
		Remitentes: &controllers.Resource[models.Remitente]{Store: remitentes, NotFound: "Remitente no encontrado", AfterChange: catalogos.Invalidate},
		Trabajadores: &controllers.Resource[models.Trabajador]{
			Store: repository.NewTrabajadorRepo(db), NotFound: "Trabajador no encontrado",
			Filters: []string{"idArea"},
		},
		Usuarios: &controllers.Resource[models.Usuario]{Store: usuarios, NotFound: "Usuario no encontrado"},
		Documentos: &controllers.Resource[models.Documento]{
			Store:       documentos,
			NotFound:    "Documento no encontrado",
			Filters:     []string{"idArea", "idAmbito", "idCategoria", "idRemitente"},
			BeforeSave:  controllers.PrepareDocumento(documentos, time.Now),
			AfterDelete: controllers.RemoveArchivo(files),
		},
	}
}
