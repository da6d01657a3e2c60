package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/kelydev/apiTramite/models"
)

// Derive sends a document to another area.
func (c *Client) Derive(ctx context.Context, idDocumento, idAreaDestino int, observacion string) (models.Derivacion, error) {
	var out models.Derivacion
	_, err := c.call(ctx, http.MethodPost, "/derivaciones", false, func(r *resty.Request) {
		r.SetBody(models.Derivacion{IDDocumento: idDocumento, IDAreaDestino: idAreaDestino, Observacion: observacion}).
			SetResult(&out)
	})
	return out, err
}

// Receive confirms receipt of a derivation.
func (c *Client) Receive(ctx context.Context, idDerivacion int) (models.DetalleDerivacion, error) {
	return c.attend(ctx, idDerivacion, "recibir", "")
}

// Reject returns a derivation to its origin.
func (c *Client) Reject(ctx context.Context, idDerivacion int, observacion string) (models.DetalleDerivacion, error) {
	return c.attend(ctx, idDerivacion, "rechazar", observacion)
}

func (c *Client) attend(ctx context.Context, idDerivacion int, action, observacion string) (models.DetalleDerivacion, error) {
	var out models.DetalleDerivacion
	path := fmt.Sprintf("/derivaciones/%d/%s", idDerivacion, action)
	_, err := c.call(ctx, http.MethodPost, path, false, func(r *resty.Request) {
		r.SetBody(models.Atencion{Observacion: observacion}).SetResult(&out)
	})
	return out, err
}

// Inbox fetches a page of the "recibidos" or "rechazados" inbox.
func (c *Client) Inbox(ctx context.Context, bandeja, term string, page, size int) (models.Page[models.DocumentoDerivado], error) {
	var out models.Page[models.DocumentoDerivado]
	_, err := c.call(ctx, http.MethodGet, "/documentos/"+bandeja, false, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{"q": term, "page": strconv.Itoa(page), "pageSize": strconv.Itoa(size)}).
			SetResult(&out)
	})
	return out, err
}

// History lists the status records of a document's derivations.
func (c *Client) History(ctx context.Context, idDocumento int) ([]models.DetalleDerivacion, error) {
	var out models.ListResponse[models.DetalleDerivacion]
	_, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/documentos/%d/historial", idDocumento), false, func(r *resty.Request) {
		r.SetResult(&out)
	})
	return out.Data, err
}

// Catalogos fetches the option lists of the document form.
func (c *Client) Catalogos(ctx context.Context) (models.Catalogos, error) {
	var out models.Catalogos
	_, err := c.call(ctx, http.MethodGet, "/catalogos", false, func(r *resty.Request) { r.SetResult(&out) })
	return out, err
}

// Upload attaches the PDF at filePath to a document and returns its stored path.
func (c *Client) Upload(ctx context.Context, idDocumento int, filePath string) (string, error) {
	var out struct {
		Archivo string `json:"archivo"`
	}
	_, err := c.call(ctx, http.MethodPost, fmt.Sprintf("/documentos/%d/archivo", idDocumento), false, func(r *resty.Request) {
		r.SetFile("archivo", filePath).SetResult(&out)
	})
	return out.Archivo, err
}

// Download copies a document's PDF to w.
func (c *Client) Download(ctx context.Context, idDocumento int, w io.Writer) (int64, error) {
	resp, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/documentos/%d/archivo", idDocumento), true, nil)
	if err != nil {
		return 0, err
	}
	body := resp.RawBody()
	defer body.Close()
	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("error reading document file: %w", err)
	}
	return n, nil
}
