package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// CleanLabel strips a path-like window title down to its final component.
// Titles without a separator, and degenerate paths with no usable final
// component ("/", "a/.."), are returned unchanged.
func CleanLabel(title string) string {
	if !strings.ContainsAny(title, `/\`) {
		return title
	}

	trimmed := strings.TrimRight(title, `/\`)
	base := trimmed[strings.LastIndexAny(trimmed, `/\`)+1:]
	if base == "" || base == "." || base == ".." {
		return title
	}
	return base
}

// FormatElapsed renders d as HH:MM:SS. Hours are not capped and sub-second
// precision is dropped.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FitWidth returns text occupying exactly width terminal columns. Wide
// (East-Asian) glyphs count as two columns. Overlong text is cut and ends in
// "...", shorter text is padded with spaces.
func FitWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if displayWidth(text) <= width {
		return padTo(text, width)
	}

	limit := width - len(ellipsis)
	if limit < 0 {
		return strings.Repeat(".", width)
	}

	var b strings.Builder
	used := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if used+w > limit {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString(ellipsis)

	return padTo(b.String(), width)
}

// displayWidth sums per-rune widths so that measuring and truncating agree on
// combining marks and variation selectors.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runewidth.RuneWidth(r)
	}
	return w
}

func padTo(s string, width int) string {
	if gap := width - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
