package models

// Trabajador is a municipal worker assigned to an area.
type Trabajador struct {
	ID        int    `json:"idTrabajador"`
	Nombres   string `json:"nombres" validate:"required,max=120"`
	Apellidos string `json:"apellidos" validate:"required,max=120"`
	DNI       string `json:"dni" validate:"required,len=8,numeric"`
	Cargo     string `json:"cargo" validate:"omitempty,max=120"`
	IDArea    int    `json:"idArea" validate:"required,gt=0"`
}

func (t Trabajador) EntityID() int { return t.ID }

func (t Trabajador) WithID(id int) Trabajador { t.ID = id; return t }

// Remitente is the sender of record for an incoming document.
type Remitente struct {
	ID        int    `json:"idRemitente"`
	Nombres   string `json:"nombres" validate:"required,max=120"`
	Apellidos string `json:"apellidos" validate:"omitempty,max=120"`
	DNI       string `json:"dni" validate:"omitempty,min=8,max=11,numeric"`
	Telefono  string `json:"telefono" validate:"omitempty,max=20"`
	Correo    string `json:"correo" validate:"omitempty,email"`
}

func (r Remitente) EntityID() int { return r.ID }

func (r Remitente) WithID(id int) Remitente { r.ID = id; return r }
