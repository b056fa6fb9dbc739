package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lepinkainen/bookjournal/internal/fileutil"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

const maxColumnWidth = 40

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	finishedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	tbrStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ratingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var tableHeaders = []string{"ID", "TITLE", "AUTHOR", "LEVEL", "STATUS", "RATING", "COVER"}

// renderBooks writes books as an aligned table
func renderBooks(w io.Writer, books []journal.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No books."))
		return
	}

	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, bookRow(b))
	}

	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], min(lipgloss.Width(cell), maxColumnWidth))
		}
	}

	var sb strings.Builder
	for i, h := range tableHeaders {
		sb.WriteString(headerStyle.Render(pad(h, widths[i])))
		sb.WriteString("  ")
	}
	fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))

	for r, row := range rows {
		sb.Reset()
		for i, cell := range row {
			sb.WriteString(styleFor(books[r], i).Render(pad(truncate(cell, maxColumnWidth), widths[i])))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d books", len(books))))
}

func bookRow(b journal.Book) []string {
	rating := "-"
	if b.Rating != nil {
		rating = fileutil.RatingStars(*b.Rating)
	}
	cover := "no"
	if b.HasCover() {
		cover = "yes"
	}
	return []string{b.ID, b.Title, b.Author, string(b.ReadLevel), statusLabel(b.Status), rating, cover}
}

func statusLabel(s journal.Status) string {
	if s == journal.StatusFinished {
		return "finished"
	}
	return "to be read"
}

func styleFor(b journal.Book, column int) lipgloss.Style {
	switch column {
	case 0:
		return dimStyle
	case 4:
		if b.Status == journal.StatusFinished {
			return finishedStyle
		}
		return tbrStyle
	case 5:
		return ratingStyle
	default:
		return cellStyle
	}
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// ratingLabel is used in plain-text exports
func ratingLabel(b journal.Book) string {
	if b.Rating == nil {
		return ""
	}
	return fileutil.RatingStars(*b.Rating) + " (" + strconv.Itoa(*b.Rating) + "/5)"
}
