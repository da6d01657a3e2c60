package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/container"
)

const browseHelp = "n: siguiente · p: anterior · g <página> · /<texto>: buscar · c <json>: crear · e <id> <json>: editar · d <id>: eliminar · q: salir"

// browser runs the interactive page loop. Searches are debounced and run on
// the debouncer's goroutine, so page calls and output are serialized by mu.
type browser struct {
	p     page
	out   io.Writer
	delay time.Duration
	mu    sync.Mutex
}

func newBrowser(p page, out io.Writer, delay time.Duration) *browser {
	return &browser{p: p, out: out, delay: delay}
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	search := container.NewDebouncer(b.delay, func(term string) {
		b.do(func() error { return b.p.Search(ctx, term) })
	})
	defer search.Stop()

	b.do(func() error { return b.p.Load(ctx) })
	b.print(browseHelp + "\n")

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if term, ok := strings.CutPrefix(line, "/"); ok {
			search.Push(term)
			continue
		}
		// A pending search runs before the next command.
		search.Flush()
		if quit := b.handle(ctx, line); quit {
			return nil
		}
	}
	search.Flush()
	return sc.Err()
}

func (b *browser) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "q", "salir":
		return true
	case "n":
		b.do(func() error { return b.step(ctx, 1) })
	case "p":
		b.do(func() error { return b.step(ctx, -1) })
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			b.print("página inválida\n")
			return false
		}
		b.do(func() error { return b.p.GoToPage(ctx, n) })
	case "c":
		b.do(func() error { return b.p.Create(ctx, []byte(arg)) })
	case "e":
		idStr, data, _ := strings.Cut(arg, " ")
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 1 {
			b.print("identificador inválido\n")
			return false
		}
		b.do(func() error { return b.p.Edit(ctx, id, []byte(data)) })
	case "d":
		id, err := strconv.Atoi(arg)
		if err != nil || id < 1 {
			b.print("identificador inválido\n")
			return false
		}
		b.do(func() error { return b.p.Delete(ctx, id) })
	default:
		b.print(browseHelp + "\n")
	}
	return false
}

// step moves delta pages from the current one. It runs inside do, so a
// debounced search cannot change the page in between.
func (b *browser) step(ctx context.Context, delta int) error {
	return b.p.GoToPage(ctx, b.p.Pagination().CurrentPage+delta)
}

// do runs one page action and prints the resulting view. Container failures
// are part of the view; form input errors are printed after it.
func (b *browser) do(fn func() error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p.Dismiss()
	err := fn()
	if err != nil {
		log.Debug().Err(err).Msg("page action failed")
	}
	fmt.Fprint(b.out, b.p.Render())
	var fe formError
	if errors.As(err, &fe) {
		fmt.Fprintln(b.out, fe.Error())
		if errors.Is(err, errNoFormData) {
			fmt.Fprint(b.out, b.p.FormOptions())
		}
	}
}

func (b *browser) print(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprint(b.out, s)
}
