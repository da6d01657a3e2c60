package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kelydev/apiTramite/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// viewStatus is the part of a container view printed under the table.
type viewStatus struct {
	Pagination models.PaginationMetadata
	Term       string
	Empty      bool
	NoResults  bool
	Success    bool
	Failed     bool
	Message    string
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func renderView(headers []string, rows [][]string, s viewStatus) string {
	var b strings.Builder
	switch {
	case s.NoResults:
		fmt.Fprintf(&b, "No se encontraron resultados para %q\n", s.Term)
	case s.Empty:
		b.WriteString("No hay registros\n")
	default:
		b.WriteString(renderTable(headers, rows))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(paginationLine(s.Pagination, s.Term)))
	b.WriteString("\n")

	if s.Failed {
		b.WriteString(errorStyle.Render("✗ " + s.Message))
		b.WriteString("\n")
	} else if s.Success {
		b.WriteString(successStyle.Render("✓ " + s.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func paginationLine(p models.PaginationMetadata, term string) string {
	line := fmt.Sprintf("Página %d de %d · %d registros", p.CurrentPage, max(p.TotalPages, 1), p.TotalItems)
	if term != "" {
		line += fmt.Sprintf(" · búsqueda %q", term)
	}
	return line
}
