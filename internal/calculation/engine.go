package calculation

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/config"
	"github.com/maplepay/payroll/internal/domain"
)

// Engine orchestrates one employee-period calculation: CPP, EI, annual
// taxable income, federal tax, provincial tax, totals and the YTD rollup.
// Calculator instances are cached per (jurisdiction, pay frequency, edition)
// so jurisdiction configuration is not rebuilt per call.
type Engine struct {
	registry *config.Registry
	log      Logger

	mu    sync.RWMutex
	cache map[calcKey]*calculatorSet
}

// calcKey identifies one cached calculator set. Edition dates participate
// because mid-year rule changes are selected by pay date, not tax year.
type calcKey struct {
	jurisdiction    string
	periods         int
	federalEdition  time.Time
	provinceEdition time.Time
}

type calculatorSet struct {
	cpp        *CPPCalculator
	ei         *EICalculator
	federal    *FederalTaxCalculator
	provincial *ProvincialTaxCalculator
	bonus      *BonusCalculator
}

// NewEngine creates an engine over a configuration registry.
func NewEngine(registry *config.Registry) *Engine {
	return &Engine{
		registry: registry,
		log:      NopLogger(),
		cache:    make(map[calcKey]*calculatorSet),
	}
}

// SetLogger replaces the engine's logger. Not safe to call concurrently
// with calculations.
func (e *Engine) SetLogger(l Logger) {
	if l != nil {
		e.log = l
	}
}

// calculators returns the cached calculator set for the jurisdiction, pay
// frequency and pay date, constructing it on first use. A duplicate
// construction under a race builds a configuration-equivalent instance and
// is harmless.
func (e *Engine) calculators(jurisdiction string, periods int, payDate time.Time) (*calculatorSet, error) {
	fed, err := e.registry.Federal(payDate)
	if err != nil {
		return nil, err
	}
	prov, err := e.registry.Province(jurisdiction, payDate)
	if err != nil {
		return nil, err
	}
	key := calcKey{
		jurisdiction:    jurisdiction,
		periods:         periods,
		federalEdition:  fed.EffectiveFrom,
		provinceEdition: prov.EffectiveFrom,
	}

	e.mu.RLock()
	set, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return set, nil
	}

	cpp, err := e.registry.CPP(payDate)
	if err != nil {
		return nil, err
	}
	ei, err := e.registry.EI(payDate)
	if err != nil {
		return nil, err
	}

	fedCalc := NewFederalTaxCalculator(fed, cpp, ei, periods)
	provCalc := NewProvincialTaxCalculator(prov, cpp, ei, periods)
	set = &calculatorSet{
		cpp:        NewCPPCalculator(cpp, periods),
		ei:         NewEICalculator(ei),
		federal:    fedCalc,
		provincial: provCalc,
		bonus:      NewBonusCalculator(fedCalc, provCalc, cpp, ei, periods),
	}

	e.mu.Lock()
	e.cache[key] = set
	e.mu.Unlock()
	e.log.Debugf("built calculators for %s periods=%d editions=%s/%s",
		jurisdiction, periods, fed.EffectiveFrom.Format("2006-01-02"), prov.EffectiveFrom.Format("2006-01-02"))
	return set, nil
}

// Calculate runs the full pipeline for one employee-period. Exemption flags
// zero the corresponding contribution without skipping later stages;
// arithmetic edge cases clamp rather than error. Errors indicate structural
// problems (unknown jurisdiction, missing configuration).
func (e *Engine) Calculate(in domain.CalculationInput) (*domain.CalculationResult, error) {
	if in.PayPeriods <= 0 {
		return nil, fmt.Errorf("pay periods must be positive, got %d", in.PayPeriods)
	}
	if in.PayDate.IsZero() {
		return nil, fmt.Errorf("pay date is required")
	}

	set, err := e.calculators(in.Jurisdiction, in.PayPeriods, in.PayDate)
	if err != nil {
		return nil, err
	}

	gross := in.Earnings.Total()
	months := in.EffectivePensionableMonths()

	cppRes := set.cpp.Calculate(CPPInput{
		PensionableEarnings:    gross,
		YTDPensionableEarnings: in.YTD.PensionableEarnings,
		YTDBase:                in.YTD.CPPBase,
		YTDAdditional:          in.YTD.CPPAdditional,
		Exempt:                 in.CPPExempt,
		CPP2Exempt:             in.CPP2Exempt,
		PensionableMonths:      months,
	})

	eiRes := set.ei.Calculate(EIInput{
		InsurableEarnings: gross,
		YTDPremium:        in.YTD.EI,
		Exempt:            in.EIExempt,
	})

	taxIn := TaxPeriodInput{
		GrossPerPeriod:    gross,
		RRSPContribution:  in.RRSPContribution,
		UnionDues:         in.UnionDues,
		CPP:               cppRes,
		EIPremium:         eiRes.Employee,
		PensionableMonths: months,
	}

	fedIn := taxIn
	fedIn.ClaimAmount = in.FederalClaimAmount
	fedIn.OtherCredits = in.OtherFederalCredits
	fedRes := set.federal.Calculate(fedIn)

	provIn := taxIn
	provIn.ClaimAmount = in.ProvincialClaimAmount
	provIn.OtherCredits = in.OtherProvincialCredits
	provRes := set.provincial.Calculate(provIn)

	totalDeductions := cppRes.Total.Add(eiRes.Employee).Add(fedRes.PeriodTax).Add(provRes.PeriodTax)
	result := &domain.CalculationResult{
		EmployeeID:      in.EmployeeID,
		Jurisdiction:    in.Jurisdiction,
		PayDate:         in.PayDate,
		GrossPay:        domain.RoundCents(gross),
		CPPBase:         cppRes.Base,
		CPPAdditional:   cppRes.Additional,
		CPPTotal:        cppRes.Total,
		CPPEmployer:     cppRes.Employer,
		EIEmployee:      eiRes.Employee,
		EIEmployer:      eiRes.Employer,
		FederalTax:      fedRes.PeriodTax,
		ProvincialTax:   provRes.PeriodTax,
		TotalDeductions: totalDeductions,
		EmployerCost:    domain.RoundCents(gross.Add(cppRes.Employer).Add(eiRes.Employer)),
		NetPay:          domain.RoundCents(gross.Sub(totalDeductions)),
		UpdatedYTD: domain.YearToDate{
			Gross:               in.YTD.Gross.Add(domain.RoundCents(gross)),
			PensionableEarnings: in.YTD.PensionableEarnings.Add(domain.RoundCents(gross)),
			InsurableEarnings:   in.YTD.InsurableEarnings.Add(domain.RoundCents(gross)),
			CPPBase:             in.YTD.CPPBase.Add(cppRes.Base),
			CPPAdditional:       in.YTD.CPPAdditional.Add(cppRes.Additional),
			EI:                  in.YTD.EI.Add(eiRes.Employee),
		},
		Audit: e.buildAudit(in, set, cppRes, eiRes, fedRes, provRes),
	}

	e.log.Debugf("calculated employee=%s jurisdiction=%s net=%s",
		in.EmployeeID, in.Jurisdiction, result.NetPay.StringFixed(2))
	return result, nil
}

func (e *Engine) buildAudit(in domain.CalculationInput, set *calculatorSet, cpp CPPResult, ei EIResult, fed, prov TaxResult) *domain.AuditTrail {
	return &domain.AuditTrail{
		CalculationID: uuid.New(),
		CalculatedAt:  time.Now().UTC(),
		EmployeeID:    in.EmployeeID,
		Jurisdiction:  in.Jurisdiction,
		TaxYear:       set.provincial.Config.TaxYear,
		EditionDate:   set.provincial.Config.EffectiveFrom,
		PayPeriods:    in.PayPeriods,
		CPP: domain.ContributionAudit{
			PensionableEarnings: in.Earnings.Total(),
			ProratedMax:         cpp.ProratedMaxBase,
			RemainingRoom:       cpp.BaseRoom,
			UncappedAmount:      cpp.UncappedBase,
			Exempt:              in.CPPExempt,
		},
		CPP2: domain.ContributionAudit{
			RemainingRoom:  cpp.AdditionalRoom,
			UncappedAmount: cpp.UncappedAdditional,
			Exempt:         in.CPPExempt || in.CPP2Exempt,
		},
		EI: domain.ContributionAudit{
			InsurableEarnings: in.Earnings.Total(),
			RemainingRoom:     ei.Room,
			UncappedAmount:    ei.UncappedPremium,
			Exempt:            in.EIExempt,
		},
		Federal:    fed.Audit,
		Provincial: prov.Audit,
	}
}

// CalculateBonus computes lump-sum bonus tax for the jurisdiction and pay
// date, using the caller-selected strategy.
func (e *Engine) CalculateBonus(in domain.BonusInput) (*domain.BonusResult, error) {
	if in.PayPeriods <= 0 {
		return nil, fmt.Errorf("pay periods must be positive, got %d", in.PayPeriods)
	}
	set, err := e.calculators(in.Jurisdiction, in.PayPeriods, in.PayDate)
	if err != nil {
		return nil, err
	}
	return set.bonus.Calculate(in)
}

// CalculateEmployeeBonus computes the tax on a lump-sum bonus paid alongside
// an employee's regular period, deriving the precise strategy's per-period
// fields from two pipeline runs: one over the regular earnings and one with
// the bonus added. The claim amounts follow the employee's year-to-date TD1
// declarations when supplied.
func (e *Engine) CalculateEmployeeBonus(in domain.CalculationInput, bonus decimal.Decimal) (*domain.BonusResult, error) {
	if bonus.LessThanOrEqual(decimal.Zero) {
		return &domain.BonusResult{Strategy: domain.BonusStrategyPrecise}, nil
	}

	regular, err := e.Calculate(in)
	if err != nil {
		return nil, err
	}
	withBonus := in
	withBonus.Earnings.Other = withBonus.Earnings.Other.Add(bonus)
	total, err := e.Calculate(withBonus)
	if err != nil {
		return nil, err
	}

	fedClaim, provClaim := in.BonusClaimAmounts()
	regularGross := in.Earnings.Total()
	deductions := in.RRSPContribution.Add(in.UnionDues)

	return e.CalculateBonus(domain.BonusInput{
		Jurisdiction:          in.Jurisdiction,
		PayPeriods:            in.PayPeriods,
		PayDate:               in.PayDate,
		Strategy:              domain.BonusStrategyPrecise,
		BonusAmount:           bonus,
		FederalClaimAmount:    fedClaim,
		ProvincialClaimAmount: provClaim,

		RegularGrossPerPeriod:      &regularGross,
		TotalCPPPerPeriod:          &total.CPPBase,
		RegularCPPPerPeriod:        &regular.CPPBase,
		TotalEIPerPeriod:           &total.EIEmployee,
		RegularEIPerPeriod:         &regular.EIEmployee,
		TotalDeductionsPerPeriod:   &deductions,
		RegularDeductionsPerPeriod: &deductions,
	})
}

// BatchItem pairs one batch input with its result or structural error.
type BatchItem struct {
	Input  domain.CalculationInput
	Result *domain.CalculationResult
	Err    error
}

// CalculateBatch applies the per-employee pipeline independently across a
// bounded worker pool. Output order matches input order; the calculation
// itself has no cross-employee ordering requirement.
func (e *Engine) CalculateBatch(inputs []domain.CalculationInput) []BatchItem {
	items := make([]BatchItem, len(inputs))
	if len(inputs) == 0 {
		return items
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.Calculate(inputs[i])
				items[i] = BatchItem{Input: inputs[i], Result: res, Err: err}
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return items
}

// Validate runs the advisory input check: it reports human-readable
// violations (negative monetary fields, implausible counts) but never blocks
// a calculation. The block-or-warn decision belongs to the caller.
func (e *Engine) Validate(in domain.CalculationInput) []string {
	var violations []string
	report := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	negative := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			report("%s cannot be negative, got %s", name, v.StringFixed(2))
		}
	}
	negative("regular earnings", in.Earnings.Regular)
	negative("overtime earnings", in.Earnings.Overtime)
	negative("holiday pay", in.Earnings.HolidayPay)
	negative("holiday premium pay", in.Earnings.HolidayPremiumPay)
	negative("vacation pay", in.Earnings.VacationPay)
	negative("other earnings", in.Earnings.Other)
	negative("rrsp contribution", in.RRSPContribution)
	negative("union dues", in.UnionDues)
	negative("federal claim amount", in.FederalClaimAmount)
	negative("provincial claim amount", in.ProvincialClaimAmount)
	negative("ytd gross", in.YTD.Gross)
	negative("ytd pensionable earnings", in.YTD.PensionableEarnings)
	negative("ytd insurable earnings", in.YTD.InsurableEarnings)
	negative("ytd cpp base", in.YTD.CPPBase)
	negative("ytd cpp additional", in.YTD.CPPAdditional)
	negative("ytd ei", in.YTD.EI)

	if in.PayPeriods <= 0 {
		report("pay periods must be positive, got %d", in.PayPeriods)
	}
	if in.PensionableMonths < 0 || in.PensionableMonths > 12 {
		report("pensionable months must be between 1 and 12, got %d", in.PensionableMonths)
	}
	return violations
}
