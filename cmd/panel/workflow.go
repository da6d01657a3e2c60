package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kelydev/apiTramite/client"
	"github.com/kelydev/apiTramite/container"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/routes"
)

var deriveCmd = &cobra.Command{
	Use:   "derive <idDocumento> <idAreaDestino>",
	Short: "Send a document to another area",
	Args:  cobra.ExactArgs(2),
	RunE:  runDerive,
}

var receiveCmd = &cobra.Command{
	Use:   "receive <idDerivacion>",
	Short: "Confirm receipt of a derived document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReceive,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <idDerivacion>",
	Short: "Return a derived document to its origin",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

var inboxCmd = &cobra.Command{
	Use:       "inbox received|rejected",
	Short:     "List the documents received by, or rejected back to, your area",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"received", "rejected"},
	RunE:      runInbox,
}

var historyCmd = &cobra.Command{
	Use:   "history <idDocumento>",
	Short: "Show the derivation history of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <idDocumento> <file.pdf>",
	Short: "Attach a PDF to a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download <idDocumento> <dest>",
	Short: "Save the PDF of a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDownload,
}

func parseIDs(args ...string) ([]int, error) {
	ids := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("identificador inválido %q", a)
		}
		ids[i] = n
	}
	return ids, nil
}

// apiFailure turns a client error into the message shown to the user, with
// the per-field messages of a rejected form.
func apiFailure(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound
	}
	msg := container.MessageFor(err)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		parts := make([]string, 0, len(apiErr.Fields))
		for _, f := range slices.Sorted(maps.Keys(apiErr.Fields)) {
			parts = append(parts, f+": "+apiErr.Fields[f])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return errors.New(msg)
}

func runDerive(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args...)
	if err != nil {
		return err
	}
	obs, _ := cmd.Flags().GetString("obs")
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	d, err := c.Derive(ctx, ids[0], ids[1], obs)
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Derivación %d creada: documento %d de área %d a área %d\n",
		d.ID, d.IDDocumento, d.IDAreaOrigen, d.IDAreaDestino)
	return nil
}

func runReceive(cmd *cobra.Command, args []string) error {
	return attend(cmd, args[0], models.EstadoRecibido)
}

func runReject(cmd *cobra.Command, args []string) error {
	return attend(cmd, args[0], models.EstadoRechazado)
}

func attend(cmd *cobra.Command, arg, estado string) error {
	ids, err := parseIDs(arg)
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var d models.DetalleDerivacion
	if estado == models.EstadoRecibido {
		d, err = c.Receive(ctx, ids[0])
	} else {
		obs, _ := cmd.Flags().GetString("obs")
		d, err = c.Reject(ctx, ids[0], obs)
	}
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Derivación %d: %s\n", d.IDDerivacion, d.Estado)
	return nil
}

func inboxName(arg string) (string, error) {
	switch routes.Canonical(arg) {
	case "received", "recibidos", "documentos/recibidos":
		return "recibidos", nil
	case "rejected", "rechazados", "documentos/rechazados":
		return "rechazados", nil
	}
	return "", fmt.Errorf("bandeja desconocida %q", arg)
}

func runInbox(cmd *cobra.Command, args []string) error {
	bandeja, err := inboxName(args[0])
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("page")
	term, _ := cmd.Flags().GetString("search")
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := c.Inbox(ctx, bandeja, term, n, pageSize)
	if err != nil {
		return apiFailure(err)
	}
	rows := make([][]string, 0, len(p.Data))
	for _, d := range p.Data {
		rows = append(rows, []string{
			itoa(d.IDDerivacion), d.NumeroDocumento, d.Asunto, itoa(d.IDAreaOrigen), itoa(d.IDAreaDestino),
			d.Estado, d.Observacion, d.FechaDerivacion.Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderView(
		[]string{"Derivación", "Número", "Asunto", "Origen", "Destino", "Estado", "Observación", "Fecha"},
		rows,
		viewStatus{Pagination: p.Pagination, Term: term, Empty: len(rows) == 0, NoResults: len(rows) == 0 && term != ""},
	))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	detalles, err := c.History(ctx, ids[0])
	if err != nil {
		return apiFailure(err)
	}
	rows := make([][]string, 0, len(detalles))
	for _, d := range detalles {
		rows = append(rows, []string{itoa(d.IDDerivacion), d.Estado, d.Observacion, itoa(d.IDUsuario), d.Fecha.Format("2006-01-02 15:04")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Derivación", "Estado", "Observación", "Usuario", "Fecha"}, rows))
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	stored, err := c.Upload(ctx, ids[0], args[1])
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archivo guardado en %s\n", stored)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) (err error) {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	f, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("error creating %s: %w", args[1], err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(args[1])
		}
	}()

	n, err := c.Download(ctx, ids[0], f)
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d bytes guardados en %s\n", n, args[1])
	return nil
}
