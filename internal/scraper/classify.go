package scraper

import "strings"

// Keyword tables for urgency scoring. Tuned for Chilean news sources.
var (
	highUrgencyKeywords = []string{
		"urgente", "último minuto", "breaking news", "alerta", "emergencia",
		"evacuación", "terremoto", "tsunami", "accidente grave", "explosión",
		"incendio masivo", "balacera", "tiroteo", "atentado", "crisis",
		"estado de emergencia", "toque de queda", "paro nacional",
	}
	mediumUrgencyKeywords = []string{
		"importante", "significativo", "relevante", "decisión clave",
		"anuncio oficial", "medida gubernamental", "cambio político",
		"inversión millonaria", "empresa importante", "deportista destacado",
		"descubrimiento", "innovación", "acuerdo comercial",
	}
	indicatorKeywords = []string{
		"presidente", "ministro", "gobierno", "congreso", "senado",
		"carabineros", "pdi", "bomberos", "onemi", "shoa",
		"banco central", "peso chileno", "inflación", "pib",
	}
)

var categoryKeywords = map[string][]string{
	"politica":      {"gobierno", "presidente", "ministro", "congreso", "senado", "diputado"},
	"economia":      {"peso", "inflación", "banco central", "empresas", "inversión", "comercio"},
	"deportes":      {"fútbol", "tenis", "atletismo", "selección", "campeonato", "mundial"},
	"salud":         {"ministerio salud", "hospital", "vacuna", "pandemia", "epidemia", "brote"},
	"tecnologia":    {"tecnología", "startup", "inteligencia artificial", "software", "digital"},
	"internacional": {"internacional", "estados unidos", "europa", "china", "onu"},
	"cultura":       {"festival", "cine", "música", "teatro", "exposición", "libro"},
}

// CalculateUrgency scores a headline plus body against the keyword
// tables: two high-urgency hits mean high, one high hit or a mix of
// medium hits with an official indicator means medium, anything else
// is low.
func CalculateUrgency(title, content string) string {
	text := strings.ToLower(title + " " + content)

	high := countMatches(text, highUrgencyKeywords)
	medium := countMatches(text, mediumUrgencyKeywords)
	indicators := countMatches(text, indicatorKeywords)

	switch {
	case high >= 2:
		return "high"
	case high >= 1 || (medium >= 2 && indicators >= 1):
		return "medium"
	case medium >= 1 || indicators >= 2:
		return "medium"
	default:
		return "low"
	}
}

// Categorize picks the category with the most keyword matches,
// defaulting to general.
func Categorize(title, content string) string {
	text := strings.ToLower(title + " " + content)

	best, bestCount := "general", 0
	for category, keywords := range categoryKeywords {
		if n := countMatches(text, keywords); n > bestCount {
			best, bestCount = category, n
		}
	}
	return best
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
