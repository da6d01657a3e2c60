package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/utils"
)

var pdf = []byte("%PDF-1.4\n%%EOF\n")

// fakeAPI accepts the access token "valid" and hands it out on refresh.
type fakeAPI struct {
	refreshes atomic.Int32
	lastQuery atomic.Value
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer valid" {
				utils.RespondError(w, http.StatusUnauthorized, "Token inválido")
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "clave" {
			utils.RespondError(w, http.StatusUnauthorized, "Usuario o contraseña incorrectos")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.TokenPair{AccessToken: "expired", RefreshToken: "r1", RolName: "AREA", UserID: 3, AreaID: 2})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		var req models.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "r1" {
			utils.RespondError(w, http.StatusUnauthorized, "Token de actualización inválido o expirado")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.TokenPair{AccessToken: "valid", RefreshToken: "r1", RolName: "AREA", UserID: 3, AreaID: 2})
	})
	mux.HandleFunc("GET /areas", authed(func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery.Store(r.URL.RawQuery)
		utils.RespondJSON(w, http.StatusOK, utils.NewPage([]models.Area{{ID: 1, Nombre: "Mesa de Partes"}}, 1, 1, 4))
	}))
	mux.HandleFunc("POST /areas", authed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusConflict, utils.ErrorResponse{Message: "ya existe un registro con nombre"})
	}))
	mux.HandleFunc("PUT /areas/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		var a models.Area
		_ = json.NewDecoder(r.Body).Decode(&a)
		utils.RespondJSON(w, http.StatusOK, a)
	}))
	mux.HandleFunc("DELETE /areas/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /documentos/{id}/archivo", authed(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("archivo")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Se requiere el campo archivo")
			return
		}
		defer file.Close()
		utils.RespondJSON(w, http.StatusOK, map[string]string{"archivo": "uploads/" + header.Filename})
	}))
	mux.HandleFunc("GET /documentos/{id}/archivo", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			utils.RespondError(w, http.StatusNotFound, "El documento no tiene archivo")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second), api
}

func login(t *testing.T, c *Client) {
	t.Helper()
	_, err := c.Login(context.Background(), "mesa", "clave")
	require.NoError(t, err)
}

func TestLoginStoresSession(t *testing.T) {
	c, _ := newTestClient(t)
	var saved models.TokenPair
	c.OnSession = func(s models.TokenPair) { saved = s }

	pair, err := c.Login(context.Background(), "mesa", "clave")
	require.NoError(t, err)
	assert.Equal(t, 3, pair.UserID)
	assert.Equal(t, pair, c.Session())
	assert.Equal(t, pair, saved)
}

func TestLoginFailureIsAPIError(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Login(context.Background(), "mesa", "otra")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Usuario o contraseña incorrectos", apiErr.Detail())
	assert.Empty(t, c.Session().AccessToken)
}

func TestRefreshOnUnauthorized(t *testing.T) {
	c, api := newTestClient(t)
	login(t, c)
	areas := NewResource[models.Area](c, "/areas")

	page, err := areas.List(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "valid", c.Session().AccessToken)
	assert.Equal(t, int32(1), api.refreshes.Load())
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.PaginationMetadata{CurrentPage: 1, PageSize: 4, TotalItems: 1, TotalPages: 1}, page.Pagination)

	// The refreshed token is reused.
	_, err = areas.Search(context.Background(), "mesa", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.refreshes.Load())
	assert.Equal(t, "page=2&pageSize=4&q=mesa", api.lastQuery.Load())
}

func TestFailedRefreshReturnsOriginalError(t *testing.T) {
	c, api := newTestClient(t)
	c.SetSession(models.TokenPair{AccessToken: "viejo", RefreshToken: "revocado"})

	_, err := NewResource[models.Area](c, "/areas").List(context.Background(), 1, 4)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Token inválido", apiErr.Message)
	assert.Equal(t, int32(1), api.refreshes.Load())
}

func TestResourceMutations(t *testing.T) {
	c, _ := newTestClient(t)
	c.SetSession(models.TokenPair{AccessToken: "valid", RefreshToken: "r1"})
	areas := NewResource[models.Area](c, "/areas")
	ctx := context.Background()

	_, err := areas.Create(ctx, models.Area{Nombre: "Mesa de Partes"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "ya existe un registro con nombre", apiErr.Detail())

	updated, err := areas.Update(ctx, models.Area{ID: 4, Nombre: "Tesorería"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.ID)

	assert.NoError(t, areas.Delete(ctx, 4))
}

func TestUploadAndDownload(t *testing.T) {
	c, _ := newTestClient(t)
	c.SetSession(models.TokenPair{AccessToken: "valid", RefreshToken: "r1"})
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "oficio.pdf")
	require.NoError(t, os.WriteFile(path, pdf, 0o600))
	stored, err := c.Upload(ctx, 1, path)
	require.NoError(t, err)
	assert.Equal(t, "uploads/oficio.pdf", stored)

	var buf bytes.Buffer
	n, err := c.Download(ctx, 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pdf)), n)
	assert.Equal(t, pdf, buf.Bytes())

	_, err = c.Download(ctx, 2, io.Discard)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "El documento no tiene archivo", apiErr.Message)
}

func TestDownloadRefreshesToken(t *testing.T) {
	c, api := newTestClient(t)
	login(t, c)

	var buf bytes.Buffer
	_, err := c.Download(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, pdf, buf.Bytes())
	assert.Equal(t, int32(1), api.refreshes.Load())
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "api error 500", (&APIError{Status: 500}).Error())
	assert.Equal(t, "api error 409: duplicado", (&APIError{Status: 409, Message: "duplicado"}).Error())
}
