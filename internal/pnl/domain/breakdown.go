package domain

import "github.com/shopspring/decimal"

// SiteMonthlyDetail is the per-site, per-month builder mutated by the
// calculator chain. SiteID carries the site number.
type SiteMonthlyDetail struct {
	SiteID                   string                    `json:"site_id"`
	ExternalRevenueBreakdown *ExternalRevenueBreakdown `json:"external_revenue_breakdown,omitempty"`
	InternalRevenueBreakdown *InternalRevenueBreakdown `json:"internal_revenue_breakdown,omitempty"`
	Value                    decimal.NullDecimal       `json:"value"`
	IsForecast               bool                      `json:"is_forecast"`
}

// Internal returns the internal breakdown, creating it on first use.
func (d *SiteMonthlyDetail) Internal() *InternalRevenueBreakdown {
	if d.InternalRevenueBreakdown == nil {
		d.InternalRevenueBreakdown = &InternalRevenueBreakdown{}
	}
	return d.InternalRevenueBreakdown
}

// Clone returns a deep copy so a frozen detail cannot be reached through the
// builder that produced it.
func (d *SiteMonthlyDetail) Clone() *SiteMonthlyDetail {
	if d == nil {
		return nil
	}
	out := *d
	out.ExternalRevenueBreakdown = d.ExternalRevenueBreakdown.Clone()
	out.InternalRevenueBreakdown = d.InternalRevenueBreakdown.Clone()
	return &out
}

type RevenueComponent struct {
	Statistic decimal.NullDecimal `json:"statistic"`
	Rate      decimal.NullDecimal `json:"rate"`
	Value     decimal.NullDecimal `json:"value"`
}

type ExternalRevenueBreakdown struct {
	ValetDaily      *RevenueComponent `json:"valet_daily,omitempty"`
	ValetMonthly    *RevenueComponent `json:"valet_monthly,omitempty"`
	ValetOvernight  *RevenueComponent `json:"valet_overnight,omitempty"`
	ValetAggregator *RevenueComponent `json:"valet_aggregator,omitempty"`
	SelfDaily       *RevenueComponent `json:"self_daily,omitempty"`
	SelfMonthly     *RevenueComponent `json:"self_monthly,omitempty"`
	SelfOvernight   *RevenueComponent `json:"self_overnight,omitempty"`
	SelfAggregator  *RevenueComponent `json:"self_aggregator,omitempty"`

	CalculatedTotalExternalRevenue decimal.NullDecimal `json:"calculated_total_external_revenue"`
	BudgetTotalExternalRevenue     decimal.NullDecimal `json:"budget_total_external_revenue"`
}

// Component returns the slot holding the component of a rate category.
func (b *ExternalRevenueBreakdown) Component(category RateCategory) **RevenueComponent {
	switch category {
	case RateCategoryValetDaily:
		return &b.ValetDaily
	case RateCategoryValetMonthly:
		return &b.ValetMonthly
	case RateCategoryValetOvernight:
		return &b.ValetOvernight
	case RateCategoryValetAggregator:
		return &b.ValetAggregator
	case RateCategorySelfDaily:
		return &b.SelfDaily
	case RateCategorySelfMonthly:
		return &b.SelfMonthly
	case RateCategorySelfOvernight:
		return &b.SelfOvernight
	case RateCategorySelfAggregator:
		return &b.SelfAggregator
	}
	return nil
}

func (b *ExternalRevenueBreakdown) Clone() *ExternalRevenueBreakdown {
	if b == nil {
		return nil
	}
	out := *b
	for _, category := range RateCategories {
		slot := out.Component(category)
		if *slot != nil {
			c := **slot
			*slot = &c
		}
	}
	return &out
}

// Total returns the calculated external revenue, zero when absent.
func (b *ExternalRevenueBreakdown) Total() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return ValueOrZero(b.CalculatedTotalExternalRevenue)
}

type EscalatorEntry struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IsApplied   bool            `json:"is_applied"`
}

type FixedFeeBreakdown struct {
	BaseAmount decimal.NullDecimal `json:"base_amount"`
	Escalators []EscalatorEntry    `json:"escalators"`
	Total      decimal.NullDecimal `json:"total"`
}

type PerOccupiedRoomBreakdown struct {
	FeePerRoom      decimal.Decimal     `json:"fee_per_room"`
	ForecastedRooms decimal.NullDecimal `json:"forecasted_rooms"`
	BudgetRooms     decimal.NullDecimal `json:"budget_rooms"`
	BaseRevenue     decimal.NullDecimal `json:"base_revenue"`
	Escalators      []EscalatorEntry    `json:"escalators"`
	Total           decimal.NullDecimal `json:"total"`
}

type PerLaborHourBreakdown struct {
	Total decimal.NullDecimal `json:"total"`
}

type RevenueShareTier struct {
	ThresholdStart decimal.NullDecimal `json:"threshold_start"`
	ThresholdEnd   decimal.NullDecimal `json:"threshold_end"`
	Percentage     decimal.NullDecimal `json:"percentage"`
	RevenueInTier  decimal.NullDecimal `json:"revenue_in_tier"`
	ShareAmount    decimal.NullDecimal `json:"share_amount"`
}

type RevenueShareBreakdown struct {
	ForecastedExternalRevenue decimal.NullDecimal `json:"forecasted_external_revenue"`
	Tiers                     []RevenueShareTier  `json:"tiers"`
	Escalators                []EscalatorEntry    `json:"escalators"`
	Total                     decimal.NullDecimal `json:"total"`
}

type PtebBreakdown struct {
	Total             decimal.NullDecimal `json:"total"`
	CalculationType   PtebBillingType     `json:"calculation_type"`
	BaseAmount        decimal.NullDecimal `json:"base_amount"`
	AppliedPercentage decimal.NullDecimal `json:"applied_percentage"`
}

type SupportServicesBreakdown struct {
	Total decimal.NullDecimal `json:"total"`
}

type ExpenseAccountsBreakdown struct {
	Total decimal.NullDecimal `json:"total"`
}

type BillableAccountsBreakdown struct {
	Total                   decimal.NullDecimal       `json:"total"`
	Pteb                    *PtebBreakdown            `json:"pteb,omitempty"`
	AdditionalPayrollAmount decimal.NullDecimal       `json:"additional_payroll_amount"`
	SupportServices         *SupportServicesBreakdown `json:"support_services,omitempty"`
	ExpenseAccounts         *ExpenseAccountsBreakdown `json:"expense_accounts,omitempty"`
}

// Add accumulates into the family total. Family members never overwrite it.
func (b *BillableAccountsBreakdown) Add(amount decimal.Decimal) {
	b.Total = decimal.NewNullDecimal(ValueOrZero(b.Total).Add(amount))
}

// RecalculateTotal rebuilds the family total from its members. Used by the
// monthly aggregation so repeated runs do not double count.
func (b *BillableAccountsBreakdown) RecalculateTotal() {
	total := ValueOrZero(b.AdditionalPayrollAmount)
	if b.Pteb != nil {
		total = total.Add(ValueOrZero(b.Pteb.Total))
	}
	if b.SupportServices != nil {
		total = total.Add(ValueOrZero(b.SupportServices.Total))
	}
	if b.ExpenseAccounts != nil {
		total = total.Add(ValueOrZero(b.ExpenseAccounts.Total))
	}
	b.Total = decimal.NewNullDecimal(total)
}

type ManagementAgreementBreakdown struct {
	Total decimal.NullDecimal `json:"total"`
}

type OtherRevenueBreakdown struct {
	Total decimal.NullDecimal `json:"total"`
}

type InternalRevenueBreakdown struct {
	FixedFee            *FixedFeeBreakdown            `json:"fixed_fee,omitempty"`
	PerOccupiedRoom     *PerOccupiedRoomBreakdown     `json:"per_occupied_room,omitempty"`
	PerLaborHour        *PerLaborHourBreakdown        `json:"per_labor_hour,omitempty"`
	RevenueShare        *RevenueShareBreakdown        `json:"revenue_share,omitempty"`
	BillableAccounts    *BillableAccountsBreakdown    `json:"billable_accounts,omitempty"`
	ManagementAgreement *ManagementAgreementBreakdown `json:"management_agreement,omitempty"`
	OtherRevenue        *OtherRevenueBreakdown        `json:"other_revenue,omitempty"`

	CalculatedTotalInternalRevenue decimal.NullDecimal `json:"calculated_total_internal_revenue"`
}

// Billable returns the billable accounts node, creating it on first use.
func (b *InternalRevenueBreakdown) Billable() *BillableAccountsBreakdown {
	if b.BillableAccounts == nil {
		b.BillableAccounts = &BillableAccountsBreakdown{}
	}
	return b.BillableAccounts
}

// ComponentTotal sums the totals of every component present. Absent
// components count as zero.
func (b *InternalRevenueBreakdown) ComponentTotal() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	if b.FixedFee != nil {
		total = total.Add(ValueOrZero(b.FixedFee.Total))
	}
	if b.PerOccupiedRoom != nil {
		total = total.Add(ValueOrZero(b.PerOccupiedRoom.Total))
	}
	if b.PerLaborHour != nil {
		total = total.Add(ValueOrZero(b.PerLaborHour.Total))
	}
	if b.RevenueShare != nil {
		total = total.Add(ValueOrZero(b.RevenueShare.Total))
	}
	if b.BillableAccounts != nil {
		total = total.Add(ValueOrZero(b.BillableAccounts.Total))
	}
	if b.ManagementAgreement != nil {
		total = total.Add(ValueOrZero(b.ManagementAgreement.Total))
	}
	if b.OtherRevenue != nil {
		total = total.Add(ValueOrZero(b.OtherRevenue.Total))
	}
	return total
}

// Recalculate refreshes CalculatedTotalInternalRevenue. Every mutation of the
// tree is followed by a call to it.
func (b *InternalRevenueBreakdown) Recalculate() {
	b.CalculatedTotalInternalRevenue = decimal.NewNullDecimal(b.ComponentTotal())
}

// Total returns the calculated internal revenue, zero when absent.
func (b *InternalRevenueBreakdown) Total() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return ValueOrZero(b.CalculatedTotalInternalRevenue)
}

func (b *InternalRevenueBreakdown) Clone() *InternalRevenueBreakdown {
	if b == nil {
		return nil
	}
	out := *b
	if b.FixedFee != nil {
		ff := *b.FixedFee
		ff.Escalators = append([]EscalatorEntry(nil), b.FixedFee.Escalators...)
		out.FixedFee = &ff
	}
	if b.PerOccupiedRoom != nil {
		por := *b.PerOccupiedRoom
		por.Escalators = append([]EscalatorEntry(nil), b.PerOccupiedRoom.Escalators...)
		out.PerOccupiedRoom = &por
	}
	if b.PerLaborHour != nil {
		plh := *b.PerLaborHour
		out.PerLaborHour = &plh
	}
	if b.RevenueShare != nil {
		rs := *b.RevenueShare
		rs.Tiers = append([]RevenueShareTier(nil), b.RevenueShare.Tiers...)
		rs.Escalators = append([]EscalatorEntry(nil), b.RevenueShare.Escalators...)
		out.RevenueShare = &rs
	}
	if b.BillableAccounts != nil {
		ba := *b.BillableAccounts
		if ba.Pteb != nil {
			p := *ba.Pteb
			ba.Pteb = &p
		}
		if ba.SupportServices != nil {
			s := *ba.SupportServices
			ba.SupportServices = &s
		}
		if ba.ExpenseAccounts != nil {
			e := *ba.ExpenseAccounts
			ba.ExpenseAccounts = &e
		}
		out.BillableAccounts = &ba
	}
	if b.ManagementAgreement != nil {
		ma := *b.ManagementAgreement
		out.ManagementAgreement = &ma
	}
	if b.OtherRevenue != nil {
		or := *b.OtherRevenue
		out.OtherRevenue = &or
	}
	return &out
}

// ValueOrZero unwraps a nullable amount.
func ValueOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
