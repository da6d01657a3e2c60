package models

import "strings"

// Ambito is the territorial scope a document belongs to.
type Ambito struct {
	ID     int    `json:"idAmbito"`
	Nombre string `json:"nombre" validate:"required,max=120"`
}

func (a Ambito) EntityID() int { return a.ID }

func (a Ambito) WithID(id int) Ambito { a.ID = id; return a }

// Categoria classifies documents (solicitud, oficio, informe...).
type Categoria struct {
	ID     int    `json:"idCategoria"`
	Nombre string `json:"nombre" validate:"required,max=120"`
}

func (c Categoria) EntityID() int { return c.ID }

func (c Categoria) WithID(id int) Categoria { c.ID = id; return c }

// CentroPoblado is a settlement inside the municipality.
type CentroPoblado struct {
	ID     int    `json:"idCentroPoblado"`
	Nombre string `json:"nombre" validate:"required,max=120"`
}

func (c CentroPoblado) EntityID() int { return c.ID }

func (c CentroPoblado) WithID(id int) CentroPoblado { c.ID = id; return c }

// Caserio is a hamlet attached to a centro poblado.
type Caserio struct {
	ID              int    `json:"idCaserio"`
	Nombre          string `json:"nombre" validate:"required,max=120"`
	IDCentroPoblado int    `json:"idCentroPoblado" validate:"required,gt=0"`
}

func (c Caserio) EntityID() int { return c.ID }

func (c Caserio) WithID(id int) Caserio { c.ID = id; return c }

// Area is an organizational department documents are routed between.
type Area struct {
	ID     int    `json:"idArea"`
	Nombre string `json:"nombre" validate:"required,max=120"`
	Sigla  string `json:"sigla" validate:"omitempty,max=20"`
}

func (a Area) EntityID() int { return a.ID }

func (a Area) WithID(id int) Area { a.ID = id; return a }

// Rol groups permissions granted to users.
type Rol struct {
	ID     int    `json:"idRol"`
	Nombre string `json:"nombre" validate:"required,max=60"`
}

func (r Rol) EntityID() int { return r.ID }

func (r Rol) WithID(id int) Rol { r.ID = id; return r }

// Catalogos bundles the reference data a document form needs before it becomes interactive.
type Catalogos struct {
	Ambitos        []Ambito        `json:"ambitos"`
	Categorias     []Categoria     `json:"categorias"`
	CentrosPoblado []CentroPoblado `json:"centrosPoblados"`
	Caserios       []Caserio       `json:"caserios"`
	Areas          []Area          `json:"areas"`
	Remitentes     []Remitente     `json:"remitentes"`
}

// ContainsFold reports whether any of the fields contains term, ignoring case.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
