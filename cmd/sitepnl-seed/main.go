package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/railzwaylabs/sitepnl/internal/pnl/repository"
	"github.com/railzwaylabs/sitepnl/pkg/db"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeds one demo site with a mixed contract so a fresh database has
// something to compute against.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.NewLoader().Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	year := time.Now().UTC().Year()
	if err := conn.Transaction(func(tx *gorm.DB) error {
		return seedDemoSite(tx, "0001", year)
	}); err != nil {
		log.Fatalf("Failed to seed demo site: %v", err)
	}

	log.Printf("Demo site 0001 seeded for %d", year)
}

func seedDemoSite(tx *gorm.DB, siteNumber string, year int) error {
	var existing repository.Site
	if err := tx.Where("site_number = ?", siteNumber).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.ID != uuid.Nil {
		log.Printf("Site %s already exists, skipping", siteNumber)
		return nil
	}

	dec := decimal.RequireFromString
	now := time.Now().UTC()
	site := repository.Site{ID: uuid.New(), SiteNumber: siteNumber, Name: "Demo Garage", CreatedAt: now, UpdatedAt: now}
	month := 7

	rows := []any{
		&site,
		&repository.Contract{
			ID:     uuid.New(),
			SiteID: site.ID,
			ContractTypes: datatypes.NewJSONSlice([]domain.ContractType{
				domain.ContractTypeFixedFee,
				domain.ContractTypeRevenueShare,
				domain.ContractTypeBillingAccount,
			}),
			IncrementMonth:  &month,
			IncrementAmount: decimal.NewNullDecimal(dec("3")),
			BillableAccountConfigs: datatypes.NewJSONSlice([]domain.BillableAccountConfig{{
				PayrollTaxesEnabled:     true,
				PayrollTaxesBillingType: domain.PtebBillingTypePercentage,
				PayrollTaxesPercentage:  decimal.NewNullDecimal(dec("8")),
			}}),
			CreatedAt: now,
			UpdatedAt: now,
		},
		&repository.FixedFee{ID: uuid.New(), SiteID: site.ID, Fee: dec("2500"), StartDate: time.Date(year-2, 1, 1, 0, 0, 0, 0, time.UTC)},
		&repository.RevenueShareThreshold{ID: uuid.New(), SiteID: site.ID, Tiers: datatypes.NewJSONSlice([]domain.ThresholdTier{
			{Amount: dec("0"), SharePercentage: dec("5")},
			{Amount: dec("20000"), SharePercentage: dec("8")},
		})},
	}

	rateID := uuid.New()
	rows = append(rows, &repository.ParkingRate{ID: rateID, SiteID: site.ID, Year: year})

	for m := 1; m <= 12; m++ {
		rows = append(rows,
			&repository.ParkingRateDetail{ID: uuid.New(), ParkingRateID: rateID, Month: m, RateCategory: string(domain.RateCategoryValetDaily), Rate: dec("32")},
			&repository.ParkingRateDetail{ID: uuid.New(), ParkingRateID: rateID, Month: m, RateCategory: string(domain.RateCategorySelfDaily), Rate: dec("18")},
			&repository.SiteStatistic{
				ID:         uuid.New(),
				SiteID:     site.ID,
				Date:       time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
				ValetDaily: decimal.NewNullDecimal(decimal.NewFromInt(int64(400 + 10*m))),
				SelfDaily:  decimal.NewNullDecimal(decimal.NewFromInt(int64(650 + 5*m))),
			},
			&repository.MonthlyFigure{
				ID:              uuid.New(),
				SiteNumber:      siteNumber,
				Year:            year,
				Month:           m,
				Scenario:        string(domain.ScenarioBudget),
				ExternalRevenue: dec("24000"),
				InternalRevenue: dec("4200"),
				Payroll:         dec("15000"),
				Pteb:            dec("1200"),
			},
			&repository.ExpenseBudget{
				ID:          uuid.New(),
				SiteID:      site.ID,
				Year:        year,
				Month:       m,
				AccountCode: "6000",
				Category:    repository.ExpenseCategoryPayroll,
				IsBillable:  true,
				Amount:      dec("15000"),
			},
		)
	}

	for _, row := range rows {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}
