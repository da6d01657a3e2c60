package routes

import (
	"slices"
	"strings"
)

// Resources are the canonical collection paths, without the leading slash.
var Resources = []string{
	"ambitos",
	"categorias",
	"centros-poblados",
	"caserios",
	"areas",
	"roles",
	"trabajadores",
	"usuarios",
	"remitentes",
	"documentos",
}

// legacyPaths maps the list pages of the old panel to their resource.
var legacyPaths = map[string]string{
	"usuarios/roles/lista":            "roles",
	"usuarios/trabajadores/lista":     "trabajadores",
	"documentos/remitentes/lista":     "remitentes",
	"centros-poblados/caserios/lista": "caserios",
	"documentos/recibidos/lista":      "documentos/recibidos",
	"documentos/rechazados/lista":     "documentos/rechazados",
}

func init() {
	for _, r := range Resources {
		legacyPaths[r+"/lista"] = r
	}
}

// Canonical resolves a resource name or old panel path ("/documentos/lista")
// to its canonical path without slashes. Unknown names are returned trimmed.
func Canonical(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if c, ok := legacyPaths[name]; ok {
		return c
	}
	return name
}

// IsResource reports whether name is a canonical CRUD collection.
func IsResource(name string) bool {
	return slices.Contains(Resources, name)
}
