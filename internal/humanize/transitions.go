package humanize

import (
	"math/rand"
	"strings"
)

// TransitionContext positions one item inside the newscast so the
// humanizer can open it with a natural transition.
type TransitionContext struct {
	Index            int
	Total            int
	Category         string
	PreviousCategory string
}

var transitionPhrases = map[string][]string{
	"politica": {
		"En el ámbito político,",
		"Pasando a la política,",
		"En materia política,",
		"En noticias políticas,",
	},
	"economia": {
		"En economía,",
		"Pasando a la economía,",
		"En el ámbito económico,",
		"Respecto a la economía,",
	},
	"deportes": {
		"En deportes,",
		"Pasando al deporte,",
		"En noticias deportivas,",
		"En el mundo del deporte,",
	},
	"internacional": {
		"En el ámbito internacional,",
		"Desde el exterior,",
		"En noticias internacionales,",
		"A nivel mundial,",
	},
	"tecnologia": {
		"En tecnología,",
		"En el mundo tecnológico,",
		"Desde el sector tech,",
		"En innovación,",
	},
	"cultura": {
		"En cultura,",
		"En el ámbito cultural,",
		"Pasando a cultura,",
		"En noticias culturales,",
	},
	"salud": {
		"En salud,",
		"En noticias de salud,",
		"En el sector salud,",
		"Respecto a la salud,",
	},
	"general": {
		"Continuando,",
		"Seguimos con,",
		"Ahora,",
		"También,",
	},
}

var genericTransitions = []string{
	"Asimismo,",
	"Por otro lado,",
	"Además,",
	"También,",
	"Continuando,",
}

// TransitionPhrase picks an opener for the item described by ctx. The
// first item gets none. A category change picks from the new category's
// pool, staying on topic picks a generic connector.
func TransitionPhrase(ctx TransitionContext) string {
	if ctx.Index == 0 {
		return ""
	}

	if ctx.PreviousCategory != "" && ctx.PreviousCategory != ctx.Category {
		phrases, ok := transitionPhrases[strings.ToLower(ctx.Category)]
		if !ok {
			phrases = transitionPhrases["general"]
		}
		return phrases[rand.Intn(len(phrases))] + " "
	}

	return genericTransitions[rand.Intn(len(genericTransitions))] + " "
}
