package models

import "time"

// Documento is a registered document and the area currently holding it.
type Documento struct {
	ID              int       `json:"idDocumento"`
	NumeroDocumento string    `json:"numeroDocumento" validate:"required,max=60"`
	Asunto          string    `json:"asunto" validate:"required,max=500"`
	Folios          int       `json:"folios" validate:"gte=1,lte=10000"`
	FechaRegistro   time.Time `json:"fechaRegistro"`
	Archivo         *string   `json:"archivo"`
	IDRemitente     int       `json:"idRemitente" validate:"required,gt=0"`
	IDAmbito        int       `json:"idAmbito" validate:"required,gt=0"`
	IDCategoria     int       `json:"idCategoria" validate:"required,gt=0"`
	IDCentroPoblado int       `json:"idCentroPoblado" validate:"required,gt=0"`
	IDCaserio       *int      `json:"idCaserio" validate:"omitempty,gt=0"`
	IDArea          int       `json:"idArea" validate:"gte=0"`
}

func (d Documento) EntityID() int { return d.ID }

func (d Documento) WithID(id int) Documento { d.ID = id; return d }
