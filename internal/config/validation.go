package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pable/kaynstats/internal/riot"
)

// newValidator returns a validator with the custom rules registered.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("routing", validateRouting)
	return v
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return formatValidationErrors(verrs)
	}
	return fmt.Errorf("validation failed: %w", err)
}

// validateRouting accepts the four match-v5 routing regions.
func validateRouting(fl validator.FieldLevel) bool {
	return riot.IsRouting(fl.Field().String())
}

// hints explains how to set fields users most often forget.
var hints = map[string]string{
	"APIKey":   "set RIOT_API_KEY in the environment or .env file",
	"GameName": "set SUMMONER_NAME in the environment or .env file",
	"TagLine":  "set TAGLINE in the environment or .env file",
	"Routing":  "use one of americas, asia, europe, sea",
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		if h, ok := hints[fe.Field()]; ok {
			msg += ": " + h
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
