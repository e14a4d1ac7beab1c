package duration

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed calibration.yaml
var calibrationRaw []byte

type calibrationFile struct {
	Voices []VoiceProfile `yaml:"voices"`
}

var calibratedVoices map[string]VoiceProfile

func init() {
	var file calibrationFile
	if err := yaml.Unmarshal(calibrationRaw, &file); err != nil {
		panic(err)
	}

	calibratedVoices = make(map[string]VoiceProfile, len(file.Voices))
	for _, v := range file.Voices {
		calibratedVoices[v.Name] = v
	}
}

// Profile returns the calibrated profile for a voice, falling back to
// the default speed for voices without a calibration entry.
func Profile(voice string) VoiceProfile {
	if p, ok := calibratedVoices[voice]; ok {
		return p
	}
	return VoiceProfile{Name: voice, WordsPerMinute: DefaultWPM}
}
