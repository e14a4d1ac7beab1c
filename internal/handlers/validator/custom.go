package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/virafm/radiocast/internal/store/model"
	"github.com/virafm/radiocast/internal/tts"
)

func voiceValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, v := range tts.Voices() {
		if v.ID == value {
			return true
		}
	}
	return false
}

func urgencyValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.UrgencyHigh, model.UrgencyMedium, model.UrgencyLow:
		return true
	}
	return false
}
