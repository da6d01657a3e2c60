package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kelydev/apiTramite/cache"
	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

const catalogKey = "catalogos"

// CatalogController serves the option lists of the document form in one payload.
type CatalogController struct {
	Ambitos        repository.Store[models.Ambito]
	Categorias     repository.Store[models.Categoria]
	CentrosPoblado repository.Store[models.CentroPoblado]
	Caserios       repository.Store[models.Caserio]
	Areas          repository.Store[models.Area]
	Remitentes     repository.Store[models.Remitente]

	Cache   cache.Cache
	TTL     time.Duration
	Metrics *metrics.Metrics
}

func (c *CatalogController) lookup(result string) {
	if c.Metrics != nil {
		c.Metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

// Get returns the cached catalogs, loading them concurrently on a miss.
// Cache failures degrade to a database read.
func (c *CatalogController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached models.Catalogos
	hit, err := c.Cache.Get(ctx, catalogKey, &cached)
	switch {
	case err != nil:
		c.lookup("error")
		log.Warn().Err(err).Msg("catalog cache read failed")
	case hit:
		c.lookup("hit")
		utils.RespondJSON(w, http.StatusOK, cached)
		return
	default:
		c.lookup("miss")
	}

	catalogos, err := c.load(ctx)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	if err := c.Cache.Set(ctx, catalogKey, catalogos, c.TTL); err != nil {
		log.Warn().Err(err).Msg("catalog cache write failed")
	}
	utils.RespondJSON(w, http.StatusOK, catalogos)
}

func (c *CatalogController) load(ctx context.Context) (models.Catalogos, error) {
	var out models.Catalogos
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Ambitos, err = all(ctx, c.Ambitos); return })
	g.Go(func() (err error) { out.Categorias, err = all(ctx, c.Categorias); return })
	g.Go(func() (err error) { out.CentrosPoblado, err = all(ctx, c.CentrosPoblado); return })
	g.Go(func() (err error) { out.Caserios, err = all(ctx, c.Caserios); return })
	g.Go(func() (err error) { out.Areas, err = all(ctx, c.Areas); return })
	g.Go(func() (err error) { out.Remitentes, err = all(ctx, c.Remitentes); return })
	return out, g.Wait()
}

func all[T any](ctx context.Context, s repository.Store[T]) ([]T, error) {
	items, _, err := s.List(ctx, repository.Query{})
	if items == nil {
		items = []T{}
	}
	return items, err
}

// Invalidate drops the cached catalogs. It is used as AfterChange of the
// resources listed in the payload.
func (c *CatalogController) Invalidate(ctx context.Context) {
	if err := c.Cache.Delete(ctx, catalogKey); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
