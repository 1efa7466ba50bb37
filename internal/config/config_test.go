package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.Validate(validator.New()))
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Guru.BaseURL = ""
	assert.Error(t, cfg.Validate(validator.New()))

	cfg = GetDefaultConfig()
	cfg.Planilhas.Dir = ""
	assert.Error(t, cfg.Validate(validator.New()))
}

func TestValidateRejectsNonPositivePacing(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Guru.QPS = 0
	assert.Error(t, cfg.Validate(validator.New()))
}
