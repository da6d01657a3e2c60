package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <resource> --data JSON",
	Short: "Create a record",
	Long: `Create a record from a JSON object, for example:

  panel create areas --data '{"nombre":"Tesorería","sigla":"TES"}'

Use --data - to read the object from stdin. Without --data the choices of
the form's reference fields are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var editCmd = &cobra.Command{
	Use:   "edit <resource> <id> --data JSON",
	Short: "Update the given fields of a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

// formData returns the --data flag, reading stdin for "-".
func formData(cmd *cobra.Command) ([]byte, error) {
	data, _ := cmd.Flags().GetString("data")
	if data != "-" {
		return []byte(data), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("error reading form data: %w", err)
	}
	return b, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	data, err := formData(cmd)
	if err != nil {
		return err
	}
	p, err := openPage(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return formResult(cmd, p, p.Create(ctx, data))
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[1])
	if err != nil || id < 1 {
		return fmt.Errorf("identificador inválido %q", args[1])
	}
	data, err := formData(cmd)
	if err != nil {
		return err
	}
	p, err := openPage(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return formResult(cmd, p, p.Edit(ctx, id, data))
}

// formResult prints the refreshed page after a submit, or the form's
// choices when no data was given.
func formResult(cmd *cobra.Command, p page, err error) error {
	var fe formError
	switch {
	case err == nil:
		fmt.Fprint(cmd.OutOrStdout(), p.Render())
		return nil
	case errors.Is(err, errNoFormData):
		fmt.Fprint(cmd.ErrOrStderr(), p.FormOptions())
		return err
	case errors.As(err, &fe):
		return err
	}
	return apiFailure(err)
}
