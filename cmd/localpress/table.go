package main

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/localpress/localpress/internal/models"
)

const maxHeadlineWidth = 60

// renderTable pads every column to its widest cell by display width, so
// accented and CJK headlines stay aligned.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func renderArticles(articles []models.Article) string {
	if len(articles) == 0 {
		return "No articles.\n"
	}
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		date := a.PublicationDate
		if date == "" {
			date = "-"
		}
		source := string(a.Origin)
		if a.NewsSource != nil && a.NewsSource.Name != "" {
			source = a.NewsSource.Name
		}
		rows = append(rows, []string{
			date,
			a.Category.Value,
			runewidth.Truncate(a.DisplayTitle(), maxHeadlineWidth, "..."),
			source,
		})
	}
	return renderTable([]string{"DATE", "CATEGORY", "HEADLINE", "SOURCE"}, rows)
}

func renderAreas(areas []models.CoverageArea) string {
	if len(areas) == 0 {
		return "No active coverage areas.\n"
	}
	rows := make([][]string, 0, len(areas))
	for _, a := range areas {
		rows = append(rows, []string{a.ZipCode, a.LocationName(), a.County})
	}
	return renderTable([]string{"ZIP", "LOCATION", "COUNTY"}, rows)
}
