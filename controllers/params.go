package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kelydev/apiTramite/utils"
)

// pathID parses the {name} route variable, writing a 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id < 1 {
		utils.RespondError(w, http.StatusBadRequest, "Identificador inválido")
		return 0, false
	}
	return id, true
}

// intFilters reads the named integer query parameters that are present.
func intFilters(r *http.Request, names []string) map[string]int {
	filters := map[string]int{}
	q := r.URL.Query()
	for _, name := range names {
		if v, err := strconv.Atoi(q.Get(name)); err == nil {
			filters[name] = v
		}
	}
	return filters
}

// searchTerm returns the free-text query (?q=, or ?search= from older clients).
func searchTerm(r *http.Request) string {
	q := r.URL.Query()
	if term := q.Get("q"); term != "" {
		return term
	}
	return q.Get("search")
}
