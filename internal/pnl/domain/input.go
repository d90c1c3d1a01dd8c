package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractType string

const (
	ContractTypeFixedFee            ContractType = "FixedFee"
	ContractTypePerOccupiedRoom     ContractType = "PerOccupiedRoom"
	ContractTypePerLaborHour        ContractType = "PerLaborHour"
	ContractTypeRevenueShare        ContractType = "RevenueShare"
	ContractTypeBillingAccount      ContractType = "BillingAccount"
	ContractTypeManagementAgreement ContractType = "ManagementAgreement"
)

type RateCategory string

const (
	RateCategoryValetDaily      RateCategory = "ValetDaily"
	RateCategoryValetMonthly    RateCategory = "ValetMonthly"
	RateCategoryValetOvernight  RateCategory = "ValetOvernight"
	RateCategoryValetAggregator RateCategory = "ValetAggregator"
	RateCategorySelfDaily       RateCategory = "SelfDaily"
	RateCategorySelfMonthly     RateCategory = "SelfMonthly"
	RateCategorySelfOvernight   RateCategory = "SelfOvernight"
	RateCategorySelfAggregator  RateCategory = "SelfAggregator"
)

// RateCategories lists the external revenue categories in reporting order.
var RateCategories = []RateCategory{
	RateCategoryValetDaily,
	RateCategoryValetMonthly,
	RateCategoryValetOvernight,
	RateCategoryValetAggregator,
	RateCategorySelfDaily,
	RateCategorySelfMonthly,
	RateCategorySelfOvernight,
	RateCategorySelfAggregator,
}

// SiteRevenueInput is everything the engine reads for one site and one year.
// It is loaded once per computation and never mutated by calculators.
type SiteRevenueInput struct {
	SiteID     uuid.UUID `json:"site_id"`
	SiteNumber string    `json:"site_number"`
	SiteName   string    `json:"site_name"`

	Contract *Contract `json:"contract,omitempty"`

	Statistics             []SiteStatistic         `json:"statistics"`
	FixedFees              []FixedFee              `json:"fixed_fees"`
	LaborHourJobs          []LaborHourJob          `json:"labor_hour_jobs"`
	RevenueShareThresholds []RevenueShareThreshold `json:"revenue_share_thresholds"`
	BillableAccounts       []BillableAccount       `json:"billable_accounts"`
	ParkingRates           []ParkingRate           `json:"parking_rates"`

	ManagementAgreement *ManagementAgreement `json:"management_agreement,omitempty"`
	OtherRevenues       []OtherRevenue       `json:"other_revenues"`
}

type Contract struct {
	ContractTypes []ContractType `json:"contract_types"`

	// Annual escalator: IncrementMonth is 1-based, IncrementAmount a percentage.
	IncrementMonth  *int                `json:"increment_month,omitempty"`
	IncrementAmount decimal.NullDecimal `json:"increment_amount"`

	OccupiedRoomRate decimal.NullDecimal `json:"occupied_room_rate"`

	BillableAccountConfigs []BillableAccountConfig `json:"billable_account_configs"`
}

func (c *Contract) HasType(t ContractType) bool {
	if c == nil {
		return false
	}
	for _, ct := range c.ContractTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Escalator returns the annual escalator rule of the contract. ok is false
// when the contract carries no usable rule.
func (c *Contract) Escalator() (Escalator, bool, error) {
	if c == nil || c.IncrementMonth == nil || !c.IncrementAmount.Valid || c.IncrementAmount.Decimal.IsZero() {
		return Escalator{}, false, nil
	}
	month := *c.IncrementMonth
	if month < 1 || month > 12 {
		return Escalator{}, false, ErrInvalidEscalatorMonth
	}
	return Escalator{
		Month:      month,
		Percentage: c.IncrementAmount.Decimal,
	}, true, nil
}

// FirstBillableAccountConfig mirrors how contracts are configured today: only
// the first configuration row is honoured.
func (c *Contract) FirstBillableAccountConfig() *BillableAccountConfig {
	if c == nil || len(c.BillableAccountConfigs) == 0 {
		return nil
	}
	return &c.BillableAccountConfigs[0]
}

type Escalator struct {
	Month      int
	Percentage decimal.Decimal
}

// Rate returns the escalator as a fraction, 10% -> 0.1.
func (e Escalator) Rate() decimal.Decimal {
	return e.Percentage.Div(hundred)
}

type SiteStatistic struct {
	Date time.Time `json:"date"`

	ValetDaily      decimal.NullDecimal `json:"valet_daily"`
	ValetMonthly    decimal.NullDecimal `json:"valet_monthly"`
	ValetOvernight  decimal.NullDecimal `json:"valet_overnight"`
	ValetAggregator decimal.NullDecimal `json:"valet_aggregator"`
	SelfDaily       decimal.NullDecimal `json:"self_daily"`
	SelfMonthly     decimal.NullDecimal `json:"self_monthly"`
	SelfOvernight   decimal.NullDecimal `json:"self_overnight"`
	SelfAggregator  decimal.NullDecimal `json:"self_aggregator"`

	OccupiedRooms decimal.NullDecimal `json:"occupied_rooms"`
}

// Volume returns the recorded volume for a rate category.
func (s SiteStatistic) Volume(category RateCategory) decimal.NullDecimal {
	switch category {
	case RateCategoryValetDaily:
		return s.ValetDaily
	case RateCategoryValetMonthly:
		return s.ValetMonthly
	case RateCategoryValetOvernight:
		return s.ValetOvernight
	case RateCategoryValetAggregator:
		return s.ValetAggregator
	case RateCategorySelfDaily:
		return s.SelfDaily
	case RateCategorySelfMonthly:
		return s.SelfMonthly
	case RateCategorySelfOvernight:
		return s.SelfOvernight
	case RateCategorySelfAggregator:
		return s.SelfAggregator
	}
	return decimal.NullDecimal{}
}

// InMonth reports whether the statistic was recorded in the given month.
func (s SiteStatistic) InMonth(year, month int) bool {
	return s.Date.Year() == year && int(s.Date.Month()) == month
}

// ManagementAgreement carries management fees settled outside the engine.
// They are reported as recorded, never derived.
type ManagementAgreement struct {
	Fees []ManagementFee `json:"fees"`
}

type ManagementFee struct {
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// FeeFor returns the fee recorded for the month.
func (m *ManagementAgreement) FeeFor(month int) (decimal.Decimal, bool) {
	if m == nil {
		return decimal.Zero, false
	}
	for _, f := range m.Fees {
		if f.Month == month {
			return f.Amount, true
		}
	}
	return decimal.Zero, false
}

type OtherRevenue struct {
	Month       int             `json:"month"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type FixedFee struct {
	ID        uuid.UUID       `json:"id"`
	Fee       decimal.Decimal `json:"fee"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

func (f FixedFee) ActiveAt(at time.Time) bool {
	return ActiveAt(f.StartDate, f.EndDate, at)
}

type LaborHourJob struct {
	ID        uuid.UUID       `json:"id"`
	JobCode   string          `json:"job_code"`
	Rate      decimal.Decimal `json:"rate"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

func (j LaborHourJob) ActiveAt(at time.Time) bool {
	return ActiveAt(j.StartDate, j.EndDate, at)
}

type RevenueShareThreshold struct {
	ID    uuid.UUID       `json:"id"`
	Tiers []ThresholdTier `json:"tiers"`
}

type ThresholdTier struct {
	Amount          decimal.Decimal `json:"amount"`
	SharePercentage decimal.Decimal `json:"share_percentage"`
	EffectiveFrom   *time.Time      `json:"effective_from,omitempty"`
	EffectiveTo     *time.Time      `json:"effective_to,omitempty"`
}

// EffectiveAt reports whether the tier applies on the given day. Open bounds
// are unbounded.
func (t ThresholdTier) EffectiveAt(at time.Time) bool {
	if t.EffectiveFrom != nil && t.EffectiveFrom.After(at) {
		return false
	}
	if t.EffectiveTo != nil && t.EffectiveTo.Before(at) {
		return false
	}
	return true
}

type BillableAccount struct {
	ID          uuid.UUID       `json:"id"`
	AccountCode string          `json:"account_code"`
	Amount      decimal.Decimal `json:"amount"`
	IsExcluded  bool            `json:"is_excluded"`
}

type PtebBillingType string

const (
	PtebBillingTypeActual     PtebBillingType = "Actual"
	PtebBillingTypePercentage PtebBillingType = "Percentage"
)

type SupportBillingType string

const (
	SupportBillingTypeFixed      SupportBillingType = "Fixed"
	SupportBillingTypePercentage SupportBillingType = "Percentage"
)

type SupportPayrollType string

const (
	SupportPayrollTypeBillable SupportPayrollType = "Billable"
	SupportPayrollTypeTotal    SupportPayrollType = "Total"
)

type EscalatorType string

const (
	EscalatorTypeAmount     EscalatorType = "Amount"
	EscalatorTypePercentage EscalatorType = "Percentage"
)

type BillableAccountConfig struct {
	PayrollTaxesEnabled         bool                `json:"payroll_taxes_enabled"`
	PayrollTaxesBillingType     PtebBillingType     `json:"payroll_taxes_billing_type"`
	PayrollTaxesPercentage      decimal.NullDecimal `json:"payroll_taxes_percentage"`
	PayrollTaxesEscalatorEnable bool                `json:"payroll_taxes_escalator_enable"`
	PayrollTaxesEscalatorMonth  *int                `json:"payroll_taxes_escalator_month,omitempty"`
	PayrollTaxesEscalatorValue  decimal.NullDecimal `json:"payroll_taxes_escalator_value"`
	PayrollTaxesEscalatorType   EscalatorType       `json:"payroll_taxes_escalator_type"`

	PayrollSupportEnabled     bool                `json:"payroll_support_enabled"`
	PayrollSupportBillingType SupportBillingType  `json:"payroll_support_billing_type"`
	PayrollSupportAmount      decimal.NullDecimal `json:"payroll_support_amount"`
	PayrollSupportPayrollType SupportPayrollType  `json:"payroll_support_payroll_type"`
}

type ParkingRate struct {
	Year    int                 `json:"year"`
	Details []ParkingRateDetail `json:"details"`
}

type ParkingRateDetail struct {
	Month        int             `json:"month"`
	RateCategory RateCategory    `json:"rate_category"`
	Rate         decimal.Decimal `json:"rate"`
}

// RateFor returns the first matching rate detail of the site's first rate
// table. Missing rates are reported as an invalid NullDecimal.
func (in *SiteRevenueInput) RateFor(month int, category RateCategory) decimal.NullDecimal {
	if in == nil || len(in.ParkingRates) == 0 {
		return decimal.NullDecimal{}
	}
	for _, d := range in.ParkingRates[0].Details {
		if d.Month == month && d.RateCategory == category {
			return decimal.NewNullDecimal(d.Rate)
		}
	}
	return decimal.NullDecimal{}
}

// FirstOfMonth returns midnight UTC of the first day of the month.
func FirstOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// ActiveAt reports whether a dated line is in force on the given day. A nil
// end date is open-ended.
func ActiveAt(start time.Time, end *time.Time, at time.Time) bool {
	if truncateDay(start).After(at) {
		return false
	}
	return end == nil || !end.Before(at)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var hundred = decimal.NewFromInt(100)
