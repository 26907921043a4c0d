// Package taxdata embeds the statutory payroll deduction parameters published
// for each tax year, including mid-year editions where a jurisdiction revised
// its figures. The tables mirror the T4127 payroll deduction formulas.
package taxdata

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// brackets builds a table from alternating threshold/rate string pairs,
// deriving the cumulative constants. Panics on malformed literals, which is
// acceptable for compile-time data.
func brackets(pairs ...string) []domain.TaxBracket {
	if len(pairs)%2 != 0 {
		panic("taxdata: brackets requires threshold/rate pairs")
	}
	thresholds := make([]decimal.Decimal, 0, len(pairs)/2)
	rates := make([]decimal.Decimal, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		thresholds = append(thresholds, d(pairs[i]))
		rates = append(rates, d(pairs[i+1]))
	}
	table, err := domain.BuildBracketTable(thresholds, rates)
	if err != nil {
		panic("taxdata: " + err.Error())
	}
	return table
}

// Year2025 returns the 2025 statutory parameter set for the federal
// government and all provinces/territories except Quebec. The federal rules
// and two provinces carry a second edition effective July 1, 2025.
func Year2025() *domain.TaxYearConfig {
	return &domain.TaxYearConfig{
		Year: 2025,
		CPP: domain.CPPParams{
			BasicExemption:            d("3500"),
			YMPE:                      d("71300"),
			YAMPE:                     d("81200"),
			BaseRate:                  d("0.0595"),
			AdditionalRate:            d("0.04"),
			MaxBaseContribution:       d("4034.10"),
			MaxAdditionalContribution: d("396.00"),
			EnhancementRate:           d("0.01"),
			CreditRate:                d("0.0495"),
		},
		EI: domain.EIParams{
			EmployeeRate:         d("0.0164"),
			MaxInsurableEarnings: d("65700"),
			MaxEmployeePremium:   d("1077.48"),
			EmployerMultiplier:   d("1.4"),
		},
		Federal:   federal2025(),
		Provinces: provinces2025(),
	}
}

func federal2025() []*domain.JurisdictionConfig {
	// The bottom federal rate dropped from 15% to 14% for remuneration paid
	// on or after July 1, 2025.
	january := &domain.JurisdictionConfig{
		Code:          domain.JurisdictionFederal,
		Name:          "Federal",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.15",
			"57375", "0.205",
			"114750", "0.26",
			"177882", "0.29",
			"253414", "0.33",
		),
		BPA:                 d("16129"),
		EmploymentCreditCap: d("1471"),
	}
	july := &domain.JurisdictionConfig{
		Code:          domain.JurisdictionFederal,
		Name:          "Federal",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 7, 1),
		Brackets: brackets(
			"0", "0.14",
			"57375", "0.205",
			"114750", "0.26",
			"177882", "0.29",
			"253414", "0.33",
		),
		BPA:                 d("16129"),
		EmploymentCreditCap: d("1471"),
	}
	return []*domain.JurisdictionConfig{january, july}
}

func provinces2025() map[string][]*domain.JurisdictionConfig {
	return map[string][]*domain.JurisdictionConfig{
		"AB": alberta2025(),
		"BC": britishColumbia2025(),
		"MB": manitoba2025(),
		"NB": newBrunswick2025(),
		"NL": newfoundland2025(),
		"NS": novaScotia2025(),
		"NT": northwestTerritories2025(),
		"NU": nunavut2025(),
		"ON": ontario2025(),
		"PE": princeEdwardIsland2025(),
		"SK": saskatchewan2025(),
		"YT": yukon2025(),
	}
}

func alberta2025() []*domain.JurisdictionConfig {
	// A new 8% bracket on the first $60,000 took effect with the July
	// edition; the January edition still applied the 10% bottom rate.
	january := &domain.JurisdictionConfig{
		Code:          "AB",
		Name:          "Alberta",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.10",
			"151234", "0.12",
			"181481", "0.13",
			"241974", "0.14",
			"362961", "0.15",
		),
		BPA: d("22323"),
	}
	july := &domain.JurisdictionConfig{
		Code:          "AB",
		Name:          "Alberta",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 7, 1),
		Brackets: brackets(
			"0", "0.08",
			"60000", "0.10",
			"151234", "0.12",
			"181481", "0.13",
			"241974", "0.14",
			"362961", "0.15",
		),
		BPA: d("22323"),
	}
	return []*domain.JurisdictionConfig{january, july}
}

func britishColumbia2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "BC",
		Name:          "British Columbia",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.0506",
			"49279", "0.077",
			"98560", "0.105",
			"113158", "0.1229",
			"137407", "0.147",
			"186306", "0.168",
			"259829", "0.205",
		),
		BPA: d("12932"),
		Features: domain.ProvinceFeatures{
			TaxReduction: &domain.TaxReductionConfig{
				Amount:       d("575"),
				Threshold:    d("24338"),
				PhaseOutRate: d("0.0356"),
			},
		},
	}}
}

func manitoba2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "MB",
		Name:          "Manitoba",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.108",
			"47000", "0.1275",
			"100000", "0.174",
		),
		BPA: d("15780"),
		Features: domain.ProvinceFeatures{
			// The BPA phases out to nil between $200,000 and $400,000.
			DynamicBPA: &domain.DynamicBPAConfig{
				MaxAmount:     d("15780"),
				MinAmount:     d("0"),
				PhaseOutStart: d("200000"),
				PhaseOutEnd:   d("400000"),
			},
		},
	}}
}

func newBrunswick2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "NB",
		Name:          "New Brunswick",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.094",
			"51306", "0.14",
			"102614", "0.16",
			"190060", "0.195",
		),
		BPA: d("13396"),
	}}
}

func newfoundland2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "NL",
		Name:          "Newfoundland and Labrador",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.087",
			"44192", "0.145",
			"88382", "0.158",
			"157792", "0.178",
			"220910", "0.198",
			"282214", "0.208",
			"564429", "0.213",
			"1128858", "0.218",
		),
		BPA: d("10818"),
		Features: domain.ProvinceFeatures{
			TaxReduction: &domain.TaxReductionConfig{
				Amount:       d("934"),
				Threshold:    d("22447"),
				PhaseOutRate: d("0.16"),
			},
		},
	}}
}

func novaScotia2025() []*domain.JurisdictionConfig {
	nsBrackets := brackets(
		"0", "0.0879",
		"30507", "0.1495",
		"61015", "0.1667",
		"95883", "0.175",
		"154650", "0.21",
	)
	// The $3,000 BPA supplement phases out between $25,000 and $75,000 of
	// taxable income.
	nsBPA := &domain.DynamicBPAConfig{
		MaxAmount:     d("11744"),
		MinAmount:     d("8744"),
		PhaseOutStart: d("25000"),
		PhaseOutEnd:   d("75000"),
	}
	january := &domain.JurisdictionConfig{
		Code:          "NS",
		Name:          "Nova Scotia",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets:      nsBrackets,
		BPA:           d("11744"),
		Features: domain.ProvinceFeatures{
			DynamicBPA: nsBPA,
		},
	}
	// The supplemental low-income credit took effect July 1, 2025.
	july := &domain.JurisdictionConfig{
		Code:          "NS",
		Name:          "Nova Scotia",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 7, 1),
		Brackets:      nsBrackets,
		BPA:           d("11744"),
		Features: domain.ProvinceFeatures{
			DynamicBPA: nsBPA,
			SupplementalCredit: &domain.SupplementalCreditConfig{
				Threshold: d("1200"),
				Factor:    d("0.15"),
			},
		},
	}
	return []*domain.JurisdictionConfig{january, july}
}

func northwestTerritories2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "NT",
		Name:          "Northwest Territories",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.059",
			"51964", "0.086",
			"103930", "0.122",
			"168967", "0.1405",
		),
		BPA: d("17842"),
	}}
}

func nunavut2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "NU",
		Name:          "Nunavut",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.04",
			"54707", "0.07",
			"109413", "0.09",
			"177881", "0.115",
		),
		BPA: d("19274"),
	}}
}

func ontario2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "ON",
		Name:          "Ontario",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.0505",
			"52886", "0.0915",
			"105775", "0.1116",
			"150000", "0.1216",
			"220000", "0.1316",
		),
		BPA: d("12747"),
		Features: domain.ProvinceFeatures{
			Surtax: []domain.SurtaxTier{
				{Threshold: d("5710"), Rate: d("0.20")},
				{Threshold: d("7307"), Rate: d("0.36")},
			},
			HealthPremium: []domain.HealthPremiumStep{
				{IncomeFloor: d("0"), Base: d("0"), Rate: d("0"), Cap: d("0")},
				{IncomeFloor: d("20000"), Base: d("0"), Rate: d("0.06"), Cap: d("300")},
				{IncomeFloor: d("36000"), Base: d("300"), Rate: d("0.06"), Cap: d("450")},
				{IncomeFloor: d("48000"), Base: d("450"), Rate: d("0.25"), Cap: d("600")},
				{IncomeFloor: d("72000"), Base: d("600"), Rate: d("0.25"), Cap: d("750")},
				{IncomeFloor: d("200000"), Base: d("750"), Rate: d("0.25"), Cap: d("900")},
			},
		},
	}}
}

func princeEdwardIsland2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "PE",
		Name:          "Prince Edward Island",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.095",
			"33328", "0.1347",
			"64656", "0.166",
			"105000", "0.1762",
			"140000", "0.19",
		),
		BPA: d("14250"),
		Features: domain.ProvinceFeatures{
			// Flat 10% surtax on basic tax above a single threshold.
			Surtax: []domain.SurtaxTier{
				{Threshold: d("12500"), Rate: d("0.10")},
			},
		},
	}}
}

func saskatchewan2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "SK",
		Name:          "Saskatchewan",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.105",
			"53463", "0.125",
			"152750", "0.145",
		),
		BPA: d("18991"),
	}}
}

func yukon2025() []*domain.JurisdictionConfig {
	return []*domain.JurisdictionConfig{{
		Code:          "YT",
		Name:          "Yukon",
		TaxYear:       2025,
		EffectiveFrom: date(2025, 1, 1),
		Brackets: brackets(
			"0", "0.064",
			"57375", "0.09",
			"114750", "0.109",
			"177882", "0.128",
			"500000", "0.15",
		),
		BPA: d("16129"),
		Features: domain.ProvinceFeatures{
			// Yukon mirrors the federal income-tested BPA and the federal
			// employment credit.
			DynamicBPA: &domain.DynamicBPAConfig{
				MaxAmount:     d("16129"),
				MinAmount:     d("14538"),
				PhaseOutStart: d("177882"),
				PhaseOutEnd:   d("253414"),
			},
			EmploymentCreditCap: d("1471"),
		},
	}}
}
