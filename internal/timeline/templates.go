package timeline

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var introVariants = []string{
	"%s. Bienvenidos al informativo de %s.%s Estos son los principales titulares.",
	"%s. Les damos la bienvenida al noticiero de %s.%s Comenzamos con las noticias.",
	"%s. Buen día. Estas son las noticias de %s.%s Aquí los titulares más importantes.",
	"%s. Iniciamos el informativo de %s.%s Vamos con las noticias.",
	"%s. Bienvenidos a su noticiero de %s.%s Empezamos con lo más destacado.",
}

// introText builds the opening line from the natural-language time of
// day, the station name and an optional weather sentence.
func introText(now time.Time, radioName, weather string) string {
	variant := introVariants[rand.Intn(len(introVariants))]
	if weather != "" {
		weather = " " + weather
	}
	return fmt.Sprintf(variant, formatTimeNatural(now), radioName, weather)
}

// formatTimeNatural renders a clock time the way an announcer reads it:
// "Son las tres y media de la tarde".
func formatTimeNatural(t time.Time) string {
	hour, minutes := t.Hour(), t.Minute()

	var period string
	switch {
	case hour >= 5 && hour < 12:
		period = "de la mañana"
	case hour >= 12 && hour < 14:
		period = "del mediodía"
	case hour >= 14 && hour < 20:
		period = "de la tarde"
	default:
		period = "de la noche"
	}

	hour12 := hour
	if hour > 12 {
		hour12 = hour - 12
	} else if hour == 0 {
		hour12 = 12
	}

	var minuteText string
	switch {
	case minutes == 0:
	case minutes == 15:
		minuteText = " y cuarto"
	case minutes == 30:
		minuteText = " y media"
	case minutes == 45:
		minuteText = " y cuarenta y cinco"
	case minutes < 10:
		minuteText = fmt.Sprintf(" con %d minutos", minutes)
	default:
		minuteText = fmt.Sprintf(" y %d", minutes)
	}

	return fmt.Sprintf("Son las %d%s %s", hour12, minuteText, period)
}

func outroText(radioName string) string {
	return fmt.Sprintf("Estas fueron las noticias en %s. Siga en nuestra sintonía.", radioName)
}

// shortOutroText closes after an extended-closing segment already said
// goodbye at length.
func shortOutroText() string {
	return "Siga en nuestra sintonía. Hasta la próxima."
}

// extendedClosingText pads a newscast that came in well under target
// with a headline recap.
func extendedClosingText(region, radioName string, headlines []string) string {
	recap := ""
	if len(headlines) > 0 {
		recap = fmt.Sprintf(" Hoy les trajimos las noticias más relevantes de %s, incluyendo %s.",
			region, strings.Join(headlines, ", "))
	}
	return fmt.Sprintf("Y así llegamos al cierre de nuestro informativo.%s "+
		"Recuerde mantenerse informado con nuestra programación habitual. "+
		"Gracias por acompañarnos en %s. Estas fueron las noticias.", recap, radioName)
}
