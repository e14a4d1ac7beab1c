package tts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// symbolReplacements expands units and abbreviations into words the
// synthesizer can pronounce. Applied longest key first so "km/h" wins
// over "h".
var symbolReplacements = map[string]string{
	"°C":   " grados celsius",
	"°F":   " grados fahrenheit",
	"°":    " grados",
	"km/h": "kilómetros por hora",
	"Km/h": "kilómetros por hora",
	"KM/H": "kilómetros por hora",
	"m/s":  "metros por segundo",
	"Kg":   "kilos",
	"kg":   "kilos",
	"KG":   "kilos",
	"mts":  "metros",
	"Mts":  "metros",
	"hrs":  "horas",
	"Hrs":  "horas",
	"mins": "minutos",
	"min":  "minutos",
	"seg":  "segundos",
	"aprox": "aproximadamente",
	"Aprox": "aproximadamente",
	"etc":   "etcétera",
	"Etc":   "etcétera",
	"vs":    "versus",
	"VS":    "versus",
	"c/u":   "cada uno",
	"p/":    "para",
	"s/":    "sin",
	"c/":    "con",
	"(s)":   "",
}

// spellAcronyms are read letter by letter on air.
var spellAcronyms = map[string]struct{}{
	"SII": {}, "PDI": {}, "SAG": {}, "ISP": {}, "INE": {}, "CMF": {}, "SVS": {}, "UAF": {}, "SEC": {}, "ISL": {}, "INP": {},
	"UF": {}, "UTM": {}, "IPC": {}, "PIB": {}, "IVA": {}, "AFP": {}, "APV": {}, "CAE": {}, "SML": {}, "BRP": {}, "CVE": {},
	"PSU": {}, "SAE": {}, "NEM": {}, "PTU": {},
	"UDI": {}, "PPD": {}, "RN": {}, "PS": {}, "DC": {}, "PC": {}, "FA": {}, "RD": {},
	"URL": {}, "USB": {}, "GPS": {}, "LED": {}, "LCD": {}, "CEO": {}, "CFO": {}, "CTO": {},
	"ONU": {}, "OMS": {}, "OIT": {}, "BID": {}, "FMI": {}, "BCE": {}, "UE": {}, "FBI": {}, "CIA": {},
	"CNN": {}, "BBC": {}, "TVN": {}, "CHV": {},
}

// readAsWordAcronyms are pronounced as a word, not spelled out.
var readAsWordAcronyms = map[string]struct{}{
	"NASA": {}, "UEFA": {}, "FIFA": {}, "NBA": {}, "NFL": {}, "COVID": {}, "SIDA": {}, "PAES": {},
	"VIH": {}, "ADN": {}, "RUT": {}, "EEUU": {}, "ABS": {}, "ESP": {}, "SUV": {}, "VAN": {}, "SUB": {},
}

// commonUppercaseWords are ordinary words that show up in caps and must
// not be treated as acronyms.
var commonUppercaseWords = map[string]struct{}{
	"EL": {}, "LA": {}, "LOS": {}, "LAS": {}, "DE": {}, "EN": {}, "CON": {}, "POR": {}, "PARA": {}, "UN": {}, "UNA": {},
	"QUE": {}, "SE": {}, "ES": {}, "AL": {}, "DEL": {}, "MAS": {}, "MÁS": {}, "SU": {}, "SUS": {}, "NO": {}, "SI": {}, "SÍ": {},
	"YA": {}, "LE": {}, "LO": {}, "ME": {}, "MI": {}, "TU": {}, "TE": {}, "NOS": {}, "LES": {}, "SER": {}, "VER": {},
	"IR": {}, "DAR": {}, "HAY": {}, "HOY": {}, "AÚN": {}, "AUN": {}, "ASÍ": {}, "ASI": {}, "TAL": {}, "TAN": {}, "LEY": {},
}

var (
	markdownPatterns = []struct {
		re   *regexp.Regexp
		with string
	}{
		{regexp.MustCompile(`\*`), ""},
		{regexp.MustCompile(`#`), ""},
		{regexp.MustCompile(`_{2,}`), ""},
		{regexp.MustCompile(`~{2,}`), ""},
		{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
		{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
		{regexp.MustCompile("`([^`]+)`"), "$1"},
		{regexp.MustCompile("```[\\s\\S]*?```"), ""},
		{regexp.MustCompile(`---+`), ""},
		{regexp.MustCompile(`===+`), ""},
		{regexp.MustCompile(`(?m)^[-+]\s+`), ""},
		{regexp.MustCompile(`(?m)^\d+\.\s+`), ""},
		{regexp.MustCompile(`>`), ""},
		{regexp.MustCompile(`\|`), ", "},
		{regexp.MustCompile(`\\`), ""},
		{regexp.MustCompile(`\[\s*\]`), ""},
		{regexp.MustCompile(`(?i)\[x\]`), ""},
		{regexp.MustCompile(`:\w+:`), ""},
	}

	thousandsSeparator = regexp.MustCompile(`(\d)\.(\d{3})([^\d]|$)`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
	acronymPattern     = regexp.MustCompile(`\b([A-ZÁÉÍÓÚÑ]{2,5})\b`)
	commaPause         = regexp.MustCompile(`,\s+`)
)

// TextToSSML converts plain text into SSML the synthesizer renders with
// natural pacing: markdown and symbols expanded, acronyms spelled where
// appropriate, each sentence wrapped in <s> with punctuation-dependent
// breaks, and a prosody lift for highlighted segments.
func TextToSSML(text string, highlighted bool) string {
	cleaned := text

	for _, p := range markdownPatterns {
		cleaned = p.re.ReplaceAllString(cleaned, p.with)
	}

	// longest symbols first so compound units don't get split
	symbols := make([]string, 0, len(symbolReplacements))
	for s := range symbolReplacements {
		symbols = append(symbols, s)
	}
	sort.Slice(symbols, func(i, j int) bool { return len(symbols[i]) > len(symbols[j]) })
	for _, s := range symbols {
		cleaned = strings.ReplaceAll(cleaned, s, symbolReplacements[s])
	}

	// 155.772 reads as one number, not one hundred fifty five point...
	cleaned = thousandsSeparator.ReplaceAllString(cleaned, "$1$2$3")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	var body strings.Builder
	for _, sentence := range splitSentences(cleaned) {
		if strings.TrimSpace(sentence) == "" {
			continue
		}

		processed := acronymPattern.ReplaceAllStringFunc(sentence, expandAcronym)
		processed = commaPause.ReplaceAllString(processed, `, <break time="250ms"/> `)

		pause := "600ms"
		if strings.HasSuffix(sentence, "?") || strings.HasSuffix(sentence, "!") {
			pause = "700ms"
		}

		fmt.Fprintf(&body, `<s>%s</s><break time="%s"/> `, strings.TrimSpace(processed), pause)
	}

	ssml := body.String()
	if highlighted {
		ssml = `<prosody rate="medium" pitch="+1st">` + ssml + `</prosody>`
	}

	return "<speak>" + ssml + "</speak>"
}

func expandAcronym(match string) string {
	if _, ok := commonUppercaseWords[match]; ok {
		return match
	}
	if _, ok := readAsWordAcronyms[match]; ok {
		return match
	}
	if _, ok := spellAcronyms[match]; ok {
		return `<say-as interpret-as="characters">` + match + `</say-as>`
	}
	// unknown short runs of caps are most likely acronyms, spell them
	if len([]rune(match)) <= 3 {
		return `<say-as interpret-as="characters">` + match + `</say-as>`
	}
	return match
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 >= len(runes) {
				continue
			}
			if runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n' {
				sentences = append(sentences, string(runes[start:i+1]))
				i++
				for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t' || runes[i] == '\n') {
					i++
				}
				start = i
				i--
			}
		}
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}
