package container

import "errors"

// Messages shown in the success and error modals.
const (
	MsgCreated    = "Registro creado correctamente"
	MsgUpdated    = "Registro actualizado correctamente"
	MsgDeleted    = "Registro eliminado correctamente"
	MsgNoResults  = "No se encontraron resultados"
	MsgUnexpected = "Ocurrió un error inesperado. Intente nuevamente."
)

// MessageFor returns the server's detail for err when it carries one,
// otherwise the generic message.
func MessageFor(err error) string {
	var d interface{ Detail() string }
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return MsgUnexpected
}
