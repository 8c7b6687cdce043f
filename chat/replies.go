package chat

import (
	"fmt"
	"strings"
)

const (
	welcomeText = "👋 Hi! I'm your safety assistant.\n" +
		"In Emergency mode I find nearby police stations, hospitals and other help.\n" +
		"In Advice mode I answer your safety questions."

	emergencyModeText = "🚨 Switched to Emergency mode. Tell me what you need, for example \"nearest police station\"."
	adviceModeText    = "💬 Switched to Advice mode. Ask me any safety question."

	locationRequiredText = "📍 I need your location to find nearby help. Please allow location access and try again."
	notConfiguredText    = "⚠️ Nearby search is not configured right now. If you are in danger, call your local emergency number."
	searchErrorText      = "⚠️ I encountered an error while searching for nearby places. Please try again."
)

func helpText(kinds []string) string {
	return fmt.Sprintf("I can help you find nearby: %s.\nTry asking \"Where is the nearest %s?\"",
		strings.Join(kinds, ", "), firstOr(kinds, "hospital"))
}

func notFoundText(kind string, radiusKm int) string {
	return fmt.Sprintf("😔 I couldn't find any %s within %dkm of your location. "+
		"If this is an emergency, call your local emergency number.", kind, radiusKm)
}

func firstOr(s []string, def string) string {
	if len(s) == 0 {
		return def
	}
	return s[0]
}
