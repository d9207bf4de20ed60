package extractor

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
)

// PDF reads a PDF held in memory. It returns a paged document of positioned
// fragments when the text layer is readable, falling back to the reader's
// plain-text stream as a text document. Image-only and custom-encoded PDFs
// fail with ErrUnreadable rather than yielding garbage.
func PDF(name string, data []byte) (doc models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: PDF library crashed: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if r.NumPage() == 0 {
		return models.Document{}, fmt.Errorf("%w: PDF has no pages", ErrUnreadable)
	}

	pages := fragmentsByPage(r)
	if isReadableText(layout.Reconstruct(pages)) {
		return models.Document{Kind: models.KindPaged, Name: name, Pages: pages}, nil
	}

	// Positioned extraction failed; the whole-document stream sometimes
	// decodes fonts the per-page path cannot.
	if plain := plainText(r); isReadableText(plain) {
		return models.Document{Kind: models.KindText, Name: name, Text: plain}, nil
	}

	return models.Document{}, fmt.Errorf("%w: no readable text could be extracted. "+
		"The file may be image-based/scanned, or use custom font encodings that cannot be decoded", ErrUnreadable)
}

// fragmentsByPage collects the text runs of every page with their positions.
func fragmentsByPage(r *pdf.Reader) [][]models.Fragment {
	var pages [][]models.Fragment
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, mergeGlyphs(page.Content().Text))
	}
	return pages
}

// mergeGlyphs joins glyph runs that sit on the same baseline and touch
// horizontally into word-level fragments. Content streams often place one
// character at a time.
func mergeGlyphs(texts []pdf.Text) []models.Fragment {
	rows := make(map[int][]pdf.Text)
	for _, t := range texts {
		yKey := int(math.Round(t.Y))
		rows[yKey] = append(rows[yKey], t)
	}

	yKeys := make([]int, 0, len(rows))
	for y := range rows {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var frags []models.Fragment
	for _, y := range yKeys {
		items := rows[y]
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].X < items[b].X
		})

		var cur *models.Fragment
		var end float64
		flush := func() {
			if cur != nil && strings.TrimSpace(cur.Text) != "" {
				cur.Text = strings.TrimSpace(cur.Text)
				frags = append(frags, *cur)
			}
			cur = nil
		}
		for _, item := range items {
			if strings.TrimSpace(item.S) == "" {
				flush()
				continue
			}
			gap := item.X - end
			if cur != nil && gap <= glyphGap(item) {
				cur.Text += item.S
			} else {
				flush()
				cur = &models.Fragment{Text: item.S, X: item.X, Y: float64(y)}
			}
			end = item.X + item.W
		}
		flush()
	}
	return frags
}

// glyphGap is the widest horizontal gap still treated as part of one word.
func glyphGap(t pdf.Text) float64 {
	return math.Max(1, t.FontSize*0.2)
}

func plainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// textQuality returns the ratio of basic ASCII readable characters (a-z, A-Z,
// 0-9, common punctuation, whitespace) to total characters. Returns 0.0-1.0.
// unicode.IsLetter is too broad: it accepts the accented characters that
// identity-encoded fonts decode into.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"£$€₹%&@#!?+=*", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually all bank statements. Text containing none
// of them is likely garbage.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period", "narration", "withdrawal", "deposit",
}

func containsCommonWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range commonWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable ASCII
// and at least one common statement word.
func isReadableText(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	return containsCommonWords(text)
}
