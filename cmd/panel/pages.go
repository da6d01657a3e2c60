package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kelydev/apiTramite/client"
	"github.com/kelydev/apiTramite/container"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/routes"
)

// page is a resource list container with its entity type erased.
type page interface {
	Load(ctx context.Context) error
	GoToPage(ctx context.Context, n int) error
	Search(ctx context.Context, term string) error
	Delete(ctx context.Context, id int) error
	Create(ctx context.Context, data []byte) error
	Edit(ctx context.Context, id int, data []byte) error
	FormOptions() string
	Dismiss()
	Pagination() models.PaginationMetadata
	Render() string
}

// formError is a problem with the form input itself. The container never
// sees it, so callers print it.
type formError struct{ msg string }

func (e formError) Error() string { return e.msg }

// errNoFormData is returned by Create and Edit when no JSON was given. The
// form is left open so its options can be shown.
var errNoFormData = formError{"indique los datos del registro en JSON"}

// optionList is one select field of a form and its choices.
type optionList struct {
	field   string
	choices []string
}

type resourcePage[T models.Entity[T]] struct {
	c       *container.Container[T]
	columns []string
	row     func(T) []string
	get     func(ctx context.Context, id int) (T, error)
	options func(models.Catalogos) []optionList

	mu       sync.Mutex
	catalogs models.Catalogos
}

func (p *resourcePage[T]) Load(ctx context.Context) error { return p.c.Load(ctx) }

func (p *resourcePage[T]) GoToPage(ctx context.Context, n int) error { return p.c.GoToPage(ctx, n) }

func (p *resourcePage[T]) Search(ctx context.Context, term string) error {
	return p.c.Search(ctx, term)
}

func (p *resourcePage[T]) Dismiss() { p.c.Dismiss() }

func (p *resourcePage[T]) Pagination() models.PaginationMetadata { return p.c.View().Pagination }

// Delete selects the record by id and confirms its deletion.
func (p *resourcePage[T]) Delete(ctx context.Context, id int) error {
	var zero T
	p.c.OpenDelete(zero.WithID(id))
	return p.c.ConfirmDelete(ctx)
}

// Create opens an empty form, fills it from data and submits it.
func (p *resourcePage[T]) Create(ctx context.Context, data []byte) error {
	if err := p.c.OpenCreate(ctx); err != nil {
		return err
	}
	var item T
	if err := p.fill(data, &item); err != nil {
		return err
	}
	return p.c.Submit(ctx, item.WithID(0))
}

// Edit opens the form with the stored record, overlays the fields present
// in data and submits it.
func (p *resourcePage[T]) Edit(ctx context.Context, id int, data []byte) error {
	item, err := p.get(ctx, id)
	if err != nil {
		return formError{apiFailure(err).Error()}
	}
	if err := p.c.OpenEdit(ctx, item); err != nil {
		return err
	}
	if err := p.fill(data, &item); err != nil {
		return err
	}
	return p.c.Submit(ctx, item.WithID(id))
}

// fill decodes the form data. Unknown fields are rejected so a misspelled
// field does not silently keep its old value.
func (p *resourcePage[T]) fill(data []byte, item *T) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errNoFormData
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(item); err != nil {
		p.c.Cancel()
		return formError{"datos del formulario inválidos: " + err.Error()}
	}
	return nil
}

func (p *resourcePage[T]) loadCatalogs(load func(context.Context) (models.Catalogos, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		cat, err := load(ctx)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.catalogs = cat
		p.mu.Unlock()
		return nil
	}
}

// FormOptions lists the choices of the form's select fields, as loaded when
// the form was opened.
func (p *resourcePage[T]) FormOptions() string {
	if p.options == nil {
		return ""
	}
	p.mu.Lock()
	lists := p.options(p.catalogs)
	p.mu.Unlock()

	var b strings.Builder
	for _, l := range lists {
		fmt.Fprintf(&b, "%s: %s\n", l.field, strings.Join(l.choices, " · "))
	}
	return b.String()
}

func (p *resourcePage[T]) Render() string {
	v := p.c.View()
	rows := make([][]string, 0, len(v.Items))
	for _, it := range v.Items {
		rows = append(rows, p.row(it))
	}
	return renderView(p.columns, rows, viewStatus{
		Pagination: v.Pagination,
		Term:       v.Term,
		Empty:      v.ShowEmpty(),
		NoResults:  v.NoResults,
		Success:    v.SuccessOpen,
		Failed:     v.ErrorOpen,
		Message:    v.Message,
	})
}

// source decides where pages read from: the API or an in-memory demo store.
type source struct {
	client *client.Client
	local  bool
	size   int
}

// resourceDef describes how one resource is searched offline, shown and edited.
type resourceDef[T models.Entity[T]] struct {
	match   func(T, string) bool
	seed    []T
	columns []string
	row     func(T) []string
	// options lists the form's select fields; nil when the form has none.
	options func(models.Catalogos) []optionList
}

func build[T models.Entity[T]](src source, path string, def resourceDef[T]) page {
	p := &resourcePage[T]{columns: def.columns, row: def.row, options: def.options}

	var (
		svc  container.Service[T]
		load func(context.Context) (models.Catalogos, error)
	)
	if src.local {
		store := repository.NewMemoryStore(def.match, def.seed...)
		svc, p.get = container.NewLocalService[T](store), store.Get
		load = func(context.Context) (models.Catalogos, error) { return demoCatalogos(), nil }
	} else {
		res := client.NewResource[T](src.client, "/"+path)
		svc, p.get = res, res.Get
		load = src.client.Catalogos
	}

	opts := container.Options[T]{PageSize: src.size}
	if def.options != nil {
		opts.LoadCatalogs = p.loadCatalogs(load)
	}
	p.c = container.New[T](svc, opts)
	return p
}

func itoa(n int) string { return strconv.Itoa(n) }

func optional(n *int) string {
	if n == nil {
		return "-"
	}
	return itoa(*n)
}

func choices[T any](items []T, label func(T) (int, string)) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		id, name := label(it)
		out = append(out, itoa(id)+" "+name)
	}
	return out
}

func areaOptions(c models.Catalogos) optionList {
	return optionList{"idArea", choices(c.Areas, func(a models.Area) (int, string) { return a.ID, a.Nombre })}
}

func centroOptions(c models.Catalogos) optionList {
	return optionList{"idCentroPoblado", choices(c.CentrosPoblado, func(cp models.CentroPoblado) (int, string) { return cp.ID, cp.Nombre })}
}

// newPage builds the page of a resource name, accepting old panel paths.
func newPage(name string, src source) (page, error) {
	name = routes.Canonical(name)
	if !routes.IsResource(name) {
		return nil, fmt.Errorf("recurso desconocido %q", name)
	}

	switch name {
	case "ambitos":
		return build(src, name, resourceDef[models.Ambito]{
			match:   func(a models.Ambito, t string) bool { return models.ContainsFold(t, a.Nombre) },
			seed:    demoAmbitos,
			columns: []string{"ID", "Nombre"},
			row:     func(a models.Ambito) []string { return []string{itoa(a.ID), a.Nombre} },
		}), nil
	case "categorias":
		return build(src, name, resourceDef[models.Categoria]{
			match:   func(c models.Categoria, t string) bool { return models.ContainsFold(t, c.Nombre) },
			seed:    demoCategorias,
			columns: []string{"ID", "Nombre"},
			row:     func(c models.Categoria) []string { return []string{itoa(c.ID), c.Nombre} },
		}), nil
	case "centros-poblados":
		return build(src, name, resourceDef[models.CentroPoblado]{
			match:   func(c models.CentroPoblado, t string) bool { return models.ContainsFold(t, c.Nombre) },
			seed:    demoCentrosPoblado,
			columns: []string{"ID", "Nombre"},
			row:     func(c models.CentroPoblado) []string { return []string{itoa(c.ID), c.Nombre} },
		}), nil
	case "caserios":
		return build(src, name, resourceDef[models.Caserio]{
			match:   func(c models.Caserio, t string) bool { return models.ContainsFold(t, c.Nombre) },
			columns: []string{"ID", "Nombre", "Centro poblado"},
			row:     func(c models.Caserio) []string { return []string{itoa(c.ID), c.Nombre, itoa(c.IDCentroPoblado)} },
			options: func(c models.Catalogos) []optionList { return []optionList{centroOptions(c)} },
		}), nil
	case "areas":
		return build(src, name, resourceDef[models.Area]{
			match:   func(a models.Area, t string) bool { return models.ContainsFold(t, a.Nombre, a.Sigla) },
			seed:    demoAreas,
			columns: []string{"ID", "Nombre", "Sigla"},
			row:     func(a models.Area) []string { return []string{itoa(a.ID), a.Nombre, a.Sigla} },
		}), nil
	case "roles":
		return build(src, name, resourceDef[models.Rol]{
			match:   func(r models.Rol, t string) bool { return models.ContainsFold(t, r.Nombre) },
			seed:    demoRoles,
			columns: []string{"ID", "Nombre"},
			row:     func(r models.Rol) []string { return []string{itoa(r.ID), r.Nombre} },
		}), nil
	case "trabajadores":
		return build(src, name, resourceDef[models.Trabajador]{
			match: func(w models.Trabajador, t string) bool {
				return models.ContainsFold(t, w.Nombres, w.Apellidos, w.DNI, w.Cargo)
			},
			columns: []string{"ID", "Nombres", "Apellidos", "DNI", "Cargo", "Área"},
			row: func(w models.Trabajador) []string {
				return []string{itoa(w.ID), w.Nombres, w.Apellidos, w.DNI, w.Cargo, itoa(w.IDArea)}
			},
			options: func(c models.Catalogos) []optionList { return []optionList{areaOptions(c)} },
		}), nil
	case "usuarios":
		return build(src, name, resourceDef[models.Usuario]{
			match:   func(u models.Usuario, t string) bool { return models.ContainsFold(t, u.Username) },
			columns: []string{"ID", "Usuario", "Trabajador", "Rol", "Activo"},
			row: func(u models.Usuario) []string {
				return []string{itoa(u.ID), u.Username, itoa(u.IDTrabajador), itoa(u.IDRol), strconv.FormatBool(u.IsActivo())}
			},
		}), nil
	case "remitentes":
		return build(src, name, resourceDef[models.Remitente]{
			match: func(r models.Remitente, t string) bool {
				return models.ContainsFold(t, r.Nombres, r.Apellidos, r.DNI)
			},
			columns: []string{"ID", "Nombres", "Apellidos", "DNI", "Teléfono", "Correo"},
			row: func(r models.Remitente) []string {
				return []string{itoa(r.ID), r.Nombres, r.Apellidos, r.DNI, r.Telefono, r.Correo}
			},
		}), nil
	default: // documentos
		return build(src, name, resourceDef[models.Documento]{
			match: func(d models.Documento, t string) bool {
				return models.ContainsFold(t, d.NumeroDocumento, d.Asunto)
			},
			columns: []string{"ID", "Número", "Asunto", "Folios", "Fecha", "Área", "Caserío"},
			row: func(d models.Documento) []string {
				return []string{itoa(d.ID), d.NumeroDocumento, d.Asunto, itoa(d.Folios),
					d.FechaRegistro.Format("2006-01-02"), itoa(d.IDArea), optional(d.IDCaserio)}
			},
			options: documentoOptions,
		}), nil
	}
}

func documentoOptions(c models.Catalogos) []optionList {
	return []optionList{
		{"idRemitente", choices(c.Remitentes, func(r models.Remitente) (int, string) { return r.ID, r.Nombres + " " + r.Apellidos })},
		{"idAmbito", choices(c.Ambitos, func(a models.Ambito) (int, string) { return a.ID, a.Nombre })},
		{"idCategoria", choices(c.Categorias, func(cat models.Categoria) (int, string) { return cat.ID, cat.Nombre })},
		centroOptions(c),
		{"idCaserio", choices(c.Caserios, func(cs models.Caserio) (int, string) { return cs.ID, cs.Nombre })},
		areaOptions(c),
	}
}

// demoCatalogos mirrors the ids the demo stores assign to their seeds.
func demoCatalogos() models.Catalogos {
	return models.Catalogos{
		Ambitos:        seeded(demoAmbitos),
		Categorias:     seeded(demoCategorias),
		CentrosPoblado: seeded(demoCentrosPoblado),
		Caserios:       []models.Caserio{},
		Areas:          seeded(demoAreas),
		Remitentes:     []models.Remitente{},
	}
}

func seeded[T models.Entity[T]](seed []T) []T {
	out := make([]T, len(seed))
	for i, it := range seed {
		out[i] = it.WithID(i + 1)
	}
	return out
}

var demoAreas = []models.Area{
	{Nombre: "Mesa de Partes", Sigla: "MP"},
	{Nombre: "Gerencia Municipal", Sigla: "GM"},
	{Nombre: "Secretaría General", Sigla: "SG"},
	{Nombre: "Desarrollo Urbano y Rural", Sigla: "DUR"},
	{Nombre: "Tesorería", Sigla: "TES"},
	{Nombre: "Asesoría Jurídica", Sigla: "AJ"},
	{Nombre: "Registro Civil", Sigla: "RC"},
}

var demoAmbitos = []models.Ambito{{Nombre: "Urbano"}, {Nombre: "Rural"}}

var demoCategorias = []models.Categoria{
	{Nombre: "Solicitud"}, {Nombre: "Oficio"}, {Nombre: "Informe"}, {Nombre: "Carta"}, {Nombre: "Memorando"},
}

var demoCentrosPoblado = []models.CentroPoblado{{Nombre: "San Juan"}, {Nombre: "Santa Rosa"}, {Nombre: "La Unión"}}

var demoRoles = []models.Rol{
	{Nombre: models.RolAdministrador}, {Nombre: "MESA_DE_PARTES"}, {Nombre: "AREA"},
}
