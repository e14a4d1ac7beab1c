package humanize

import (
	"regexp"
	"strings"
)

// DefaultMaxContentChars bounds how much scraped content is sent to the
// humanizer in one request.
const DefaultMaxContentChars = 4000

var cleanupPatterns = []*regexp.Regexp{
	// photo credits and agency tags
	regexp.MustCompile(`(?i)Foto:.*?\.`),
	regexp.MustCompile(`(?i)Imagen:.*?\.`),
	regexp.MustCompile(`(?i)Créditos?:.*?\.`),
	regexp.MustCompile(`(?i)REUTERS|AFP|AP|EFE|AGENCIA UNO|ATON|PHOTOSPORT|MEGA`),
	regexp.MustCompile(`\([A-Z]+\)\.?`),

	// bylines
	regexp.MustCompile(`Por [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+ [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+\.?`),
	regexp.MustCompile(`(?i)Escrito por.*?\.`),

	// redundant dates
	regexp.MustCompile(`\d{1,2} de \p{L}+ de \d{4}`),
	regexp.MustCompile(`(?i)Publicado:.*?\.`),
	regexp.MustCompile(`(?i)Actualizado:.*?\.`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),

	// related-content sections, everything after the header goes
	regexp.MustCompile(`(?is)Sigue leyendo:.*$`),
	regexp.MustCompile(`(?is)Te puede interesar:.*$`),
	regexp.MustCompile(`(?is)Lee también:.*$`),
	regexp.MustCompile(`(?is)Relacionado:.*$`),
	regexp.MustCompile(`(?is)Mira también:.*$`),
	regexp.MustCompile(`(?is)Más noticias:.*$`),

	// UI leftovers
	regexp.MustCompile(`(?is)Comparte esta noticia.*$`),
	regexp.MustCompile(`(?is)Síguenos en.*$`),
	regexp.MustCompile(`(?is)Newsletter.*$`),
	regexp.MustCompile(`(?is)Suscríbete.*$`),
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	uiGlyphs      = regexp.MustCompile(`[×•►▶◄◀]`)
)

// PrepareContent strips scraping artifacts (credits, bylines, related
// links, share widgets) and truncates the result to maxChars, preferring
// a sentence boundary when one falls in the last 30% of the budget.
func PrepareContent(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}

	cleaned := text
	for _, p := range cleanupPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	cleaned = uiGlyphs.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if runes := []rune(cleaned); len(runes) > maxChars {
		truncated := string(runes[:maxChars])
		if lastSentence := strings.LastIndex(truncated, "."); lastSentence > len(truncated)*7/10 {
			cleaned = truncated[:lastSentence+1]
		} else {
			cleaned = truncated + "..."
		}
	}

	return cleaned
}
