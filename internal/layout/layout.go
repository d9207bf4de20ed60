// Package layout rebuilds reading-order text lines from positioned page
// fragments.
package layout

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Reconstruct turns pages of fragments into flat text, one reconstructed
// line per row and pages separated by a line break.
func Reconstruct(pages [][]models.Fragment) string {
	var lines []string
	for _, page := range pages {
		lines = append(lines, Lines(page)...)
	}
	return strings.Join(lines, "\n")
}

// Lines groups one page's fragments into rows by rounded Y, emits rows from
// the top of the page (highest Y) down, and joins each row's fragments left
// to right with a single space.
func Lines(page []models.Fragment) []string {
	type item struct {
		x float64
		s string
	}

	rows := make(map[int][]item)
	for _, f := range page {
		s := strings.TrimSpace(norm.NFKC.String(f.Text))
		if s == "" {
			continue
		}
		y := int(math.Round(f.Y))
		rows[y] = append(rows[y], item{x: f.X, s: s})
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		items := rows[y]
		// Stable so fragments sharing an X keep their input order.
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].x < items[b].x
		})
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.s
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
