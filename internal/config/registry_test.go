package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll/internal/taxdata"
)

func TestDefaultRegistryEditionSelection(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name         string
		payDate      time.Time
		expectedRate string
	}{
		{"january edition", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "0.15"},
		{"last day before the cut-over", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "0.15"},
		{"cut-over day", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "0.14"},
		{"late in the year", time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC), "0.14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fed, err := reg.Federal(tt.payDate)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRate, fed.LowestRate().String())
		})
	}
}

func TestDefaultRegistryProvinces(t *testing.T) {
	reg := DefaultRegistry()
	payDate := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	on, err := reg.Province("ON", payDate)
	require.NoError(t, err)
	assert.Equal(t, "12747", on.BPA.String())
	assert.Len(t, on.Features.Surtax, 2)

	// Alberta's 8% bracket exists only from July.
	abJan, err := reg.Province("AB", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "0.1", abJan.LowestRate().String())
	abJul, err := reg.Province("AB", payDate)
	require.NoError(t, err)
	assert.Equal(t, "0.08", abJul.LowestRate().String())

	// Quebec administers its own plan.
	_, err = reg.Province("QC", payDate)
	assert.Error(t, err)

	_, err = reg.Province("ON", time.Date(2024, 7, 18, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err, "no configuration loaded for 2024")
}

func TestNewRegistryRejectsBadInput(t *testing.T) {
	_, err := NewRegistry()
	assert.Error(t, err)

	year := taxdata.Year2025()
	duplicate := taxdata.Year2025()
	_, err = NewRegistry(year, duplicate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestRegistryParameterAccess(t *testing.T) {
	reg := DefaultRegistry()
	payDate := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	cpp, err := reg.CPP(payDate)
	require.NoError(t, err)
	assert.Equal(t, "4034.1", cpp.MaxBaseContribution.String())

	ei, err := reg.EI(payDate)
	require.NoError(t, err)
	assert.Equal(t, "1077.48", ei.MaxEmployeePremium.String())
}
