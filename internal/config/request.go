package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maplepay/payroll/internal/domain"
)

// RequestFile is the on-disk shape of a calculation request: one or many
// employee-period inputs and optional bonus requests.
type RequestFile struct {
	Inputs  []domain.CalculationInput `yaml:"inputs"`
	Bonuses []domain.BonusInput       `yaml:"bonuses"`
}

// LoadRequestFile loads a YAML calculation request.
func LoadRequestFile(filename string) (*RequestFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %s: %w", filename, err)
	}
	var req RequestFile
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", filename, err)
	}
	if len(req.Inputs) == 0 && len(req.Bonuses) == 0 {
		return nil, fmt.Errorf("request file %s contains no inputs", filename)
	}
	return &req, nil
}
