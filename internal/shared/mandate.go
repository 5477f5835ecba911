package shared

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"cre_catalog/internal/pipeline"
)

// mandateFile mirrors MandatePolicy with optional fields, so a partial
// document overrides only the rules it names.
type mandateFile struct {
	RequiredFields  []string          `yaml:"required_fields"`
	MinPrice        *float64          `yaml:"min_price"`
	MaxPrice        *float64          `yaml:"max_price"`
	MaxDaysOnMarket *int              `yaml:"max_days_on_market"`
	AllowedTypes    []string          `yaml:"allowed_types"`
	EnforceTypes    *bool             `yaml:"enforce_types"`
	TypeMapping     map[string]string `yaml:"type_mapping"`
}

func applyMandateFile(p *pipeline.MandatePolicy, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var mf mandateFile
	if err := yaml.NewDecoder(f).Decode(&mf); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	if len(mf.RequiredFields) > 0 {
		p.RequiredFields = mf.RequiredFields
	}
	if mf.MinPrice != nil {
		p.MinPrice = *mf.MinPrice
	}
	if mf.MaxPrice != nil {
		p.MaxPrice = *mf.MaxPrice
	}
	if mf.MaxDaysOnMarket != nil {
		p.MaxDaysOnMarket = *mf.MaxDaysOnMarket
	}
	if len(mf.AllowedTypes) > 0 {
		p.AllowedTypes = mf.AllowedTypes
	}
	if mf.EnforceTypes != nil {
		p.EnforceTypes = *mf.EnforceTypes
	}
	if len(mf.TypeMapping) > 0 {
		p.TypeMapping = mf.TypeMapping
	}
	return nil
}
