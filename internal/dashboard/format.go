package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units, rounded to at most
// two decimals: 0 → "0 B", 1024 → "1 KB", 1536 → "1.5 KB". Sizes past the
// last unit stay in GB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[unit]
}

// ReleaseSummary condenses a scene release title into the parts an operator
// scans for: "S02E01 · 1080p · WEB" for episodes, "2024 · 2160p · UHD.BluRay"
// for movies. Titles with nothing recognizable yield "".
func ReleaseSummary(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	r := rls.ParseString(title)

	var parts []string
	switch {
	case r.Series > 0 && r.Episode > 0:
		parts = append(parts, fmt.Sprintf("S%02dE%02d", r.Series, r.Episode))
	case r.Series > 0:
		parts = append(parts, fmt.Sprintf("S%02d", r.Series))
	case r.Year > 0:
		parts = append(parts, strconv.Itoa(r.Year))
	}
	if r.Resolution != "" {
		parts = append(parts, r.Resolution)
	}
	if r.Source != "" {
		parts = append(parts, r.Source)
	}
	return strings.Join(parts, " · ")
}
