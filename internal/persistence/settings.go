package persistence

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"bookdist/pkg/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateSettings checks theme and font size against their enums.
func ValidateSettings(s domain.Settings) error {
	return settingsValidator().Struct(s)
}
