package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/ledgr/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has no ANSI codes - padding would render unstyled", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")

	want := lipgloss.Width(tallCard) + lipgloss.Width(shortCard)
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("Line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {100, 4}, {7, 2}, {10, 1}} {
		sum := 0
		for _, w := range LayoutRow(tc.total, tc.n) {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestRatioBarWidth(t *testing.T) {
	theme.SetActive("terminal")
	for _, pct := range []float64{0, 0.42, 1, 1.7} {
		bar := RatioBar(pct, 20)
		// bar + space + label
		if w := lipgloss.Width(bar); w < 22 {
			t.Errorf("RatioBar(%v) width = %d", pct, w)
		}
	}
	if !strings.Contains(RatioBar(1.7, 10), "170%") {
		t.Error("RatioBar should report the real percentage above 100%")
	}
}

func TestTabVisualWidth(t *testing.T) {
	theme.SetActive("ledgr")
	for _, tab := range Tabs {
		active := TabVisualWidth(tab, true)
		if active != len(tab.Name)+2 {
			t.Errorf("%s active width = %d, want %d", tab.Name, active, len(tab.Name)+2)
		}
		inactive := TabVisualWidth(tab, false)
		want := len(tab.Name) + 2
		if tab.KeyPos < 0 {
			want += 3
		}
		if inactive != want {
			t.Errorf("%s inactive width = %d, want %d", tab.Name, inactive, want)
		}
	}
}
