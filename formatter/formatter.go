// Package formatter renders place search results as chat text.
package formatter

import (
	"fmt"
	"math"
	"strings"

	"go-safeher/types"
)

const (
	defaultIcon = "📍"
	unnamed     = "Unnamed location"
	noPhone     = "No phone available"
)

var icons = map[types.CategoryID]string{
	"healthcare.hospital":         "🏥",
	"healthcare.pharmacy":         "💊",
	"healthcare.clinic_or_praxis": "🩺",
	"service.police":              "👮",
	"service.fire_station":        "🚒",
}

// Icon returns the icon for an exact category match, or a generic pin.
func Icon(category types.CategoryID) string {
	if icon, ok := icons[category]; ok {
		return icon
	}
	return defaultIcon
}

// Format renders a non-empty list of places found within radiusKm.
func Format(places []types.PlaceRecord, category types.CategoryID, radiusKm int) string {
	icon := Icon(category)
	blocks := make([]string, 0, len(places))
	for _, p := range places {
		blocks = append(blocks, formatPlace(p, icon))
	}

	summary := fmt.Sprintf("Found %d %s within %dkm:", len(places), category.Kind(), radiusKm)
	return summary + "\n\n" + strings.Join(blocks, "\n\n")
}

func formatPlace(p types.PlaceRecord, icon string) string {
	name := p.Name
	if name == "" {
		name = unnamed
	}
	phone := p.Phone
	if phone == "" {
		phone = noPhone
	}

	lines := []string{icon + " " + name}
	if p.Address != "" {
		lines = append(lines, "🏠 "+p.Address)
	}
	lines = append(lines, "📞 "+phone, "📏 "+Distance(p.DistanceMeters))
	return strings.Join(lines, "\n")
}

// Distance renders meters below 1km and kilometers with one decimal above.
func Distance(meters float64) string {
	if m := math.Round(meters); m < 1000 {
		return fmt.Sprintf("%.0fm", m)
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}
