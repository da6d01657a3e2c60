package models

import (
	"errors"
	"strings"
	"time"
)

// Estados of a derivation detail.
const (
	EstadoPendiente = "PENDIENTE"
	EstadoRecibido  = "RECIBIDO"
	EstadoRechazado = "RECHAZADO"
)

var (
	ErrDerivacionPendiente  = errors.New("el documento ya tiene una derivación pendiente")
	ErrMismaArea            = errors.New("el área de destino debe ser distinta del área de origen")
	ErrAreaNoAutorizada     = errors.New("su área no está autorizada para esta operación")
	ErrTransicionInvalida   = errors.New("la derivación ya fue atendida")
	ErrObservacionRequerida = errors.New("la observación es obligatoria al rechazar")
)

// Derivacion routes a document from one area to another.
type Derivacion struct {
	ID              int       `json:"idDerivacion"`
	IDDocumento     int       `json:"idDocumento" validate:"required,gt=0"`
	IDAreaOrigen    int       `json:"idAreaOrigen"`
	IDAreaDestino   int       `json:"idAreaDestino" validate:"required,gt=0"`
	IDUsuario       int       `json:"idUsuario"`
	Observacion     string    `json:"observacion" validate:"max=500"`
	FechaDerivacion time.Time `json:"fechaDerivacion"`
}

// DetalleDerivacion is a status record appended to a derivation.
type DetalleDerivacion struct {
	ID           int       `json:"idDetalle"`
	IDDerivacion int       `json:"idDerivacion"`
	Estado       string    `json:"estado"`
	Observacion  string    `json:"observacion"`
	IDUsuario    int       `json:"idUsuario"`
	Fecha        time.Time `json:"fecha"`
}

// Atencion is the body of a receive/reject request.
type Atencion struct {
	Observacion string `json:"observacion" validate:"max=500"`
}

// DocumentoDerivado is a row of the received and rejected inboxes.
type DocumentoDerivado struct {
	Documento
	IDDerivacion    int       `json:"idDerivacion"`
	IDAreaOrigen    int       `json:"idAreaOrigen"`
	IDAreaDestino   int       `json:"idAreaDestino"`
	Estado          string    `json:"estado"`
	Observacion     string    `json:"observacion"`
	FechaDerivacion time.Time `json:"fechaDerivacion"`
}

func (d DocumentoDerivado) EntityID() int { return d.IDDerivacion }

func (d DocumentoDerivado) WithID(id int) DocumentoDerivado { d.IDDerivacion = id; return d }

// Actor is the authenticated user performing a workflow step.
type Actor struct {
	UserID int
	AreaID int
	Admin  bool
}

// CheckDerive validates a new derivation of a document currently held by docArea.
func CheckDerive(actor Actor, docArea int, pending bool, destino int) error {
	if pending {
		return ErrDerivacionPendiente
	}
	if !actor.Admin && actor.AreaID != docArea {
		return ErrAreaNoAutorizada
	}
	if destino == docArea {
		return ErrMismaArea
	}
	return nil
}

// CheckTransition validates moving a derivation whose latest state is current to next.
// Only the destination area may attend a derivation, and only while it is pending.
func CheckTransition(actor Actor, destino int, current, next, observacion string) error {
	if !actor.Admin && actor.AreaID != destino {
		return ErrAreaNoAutorizada
	}
	if current != EstadoPendiente {
		return ErrTransicionInvalida
	}
	switch next {
	case EstadoRecibido:
		return nil
	case EstadoRechazado:
		if strings.TrimSpace(observacion) == "" {
			return ErrObservacionRequerida
		}
		return nil
	default:
		return ErrTransicionInvalida
	}
}
