package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kelydev/apiTramite/container"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print one page of a resource",
	Long: `Print one page of a resource.

Resources: ambitos, categorias, centros-poblados, caserios, areas, roles,
trabajadores, usuarios, remitentes, documentos.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

var browseCmd = &cobra.Command{
	Use:   "browse <resource>",
	Short: "Page through a resource interactively",
	Long: `Page through a resource interactively.

Commands:
  n          next page
  p          previous page
  g <page>   go to page
  /<term>    search (an empty term clears the search)
  c <json>   create a record (without JSON, show the form choices)
  e <id> <json>
             update the given fields of a record
  d <id>     delete a record
  q          quit`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runLogin(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Contraseña: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("error reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	pair, err := c.Login(ctx, user, password)
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sesión iniciada: usuario %d, rol %s, área %d\n", pair.UserID, pair.RolName, pair.AreaID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := clearSession(sessionPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	me, err := c.Me(ctx)
	if err != nil {
		return apiFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) · rol %s · área %d\n", me.Username, me.UserID, me.RolName, me.AreaID)
	return nil
}

func pageSource() (source, error) {
	src := source{local: local, size: pageSize}
	if local {
		return src, nil
	}
	c, err := newClient()
	if err != nil {
		return src, err
	}
	src.client = c
	return src, nil
}

func openPage(name string) (page, error) {
	src, err := pageSource()
	if err != nil {
		return nil, err
	}
	return newPage(name, src)
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := openPage(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	n, _ := cmd.Flags().GetInt("page")
	term, _ := cmd.Flags().GetString("search")
	if term != "" {
		err = p.Search(ctx, term)
	} else {
		err = p.Load(ctx)
	}
	if err == nil && n > 1 {
		err = p.GoToPage(ctx, n)
	}
	fmt.Fprint(cmd.OutOrStdout(), p.Render())
	return err
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[1])
	if err != nil || id < 1 {
		return fmt.Errorf("identificador inválido %q", args[1])
	}
	p, err := openPage(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := p.Delete(ctx, id); err != nil {
		return apiFailure(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), container.MsgDeleted)
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	p, err := openPage(args[0])
	if err != nil {
		return err
	}
	b := newBrowser(p, cmd.OutOrStdout(), debounce)
	return b.run(baseContext(cmd), cmd.InOrStdin())
}
