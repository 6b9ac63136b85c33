package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/internal/customers"
	"github.com/voltedge/renewals-backend/internal/notifications"
	"github.com/voltedge/renewals-backend/internal/renewals"
	"github.com/voltedge/renewals-backend/internal/scheduler"
	"github.com/voltedge/renewals-backend/internal/users"
	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/db"
	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	"github.com/voltedge/renewals-backend/pkg/logger"
	"github.com/voltedge/renewals-backend/pkg/migrate"
	"github.com/voltedge/renewals-backend/pkg/security"
)

const (
	adminEmail       = "admin@example.com"
	salespersonEmail = "sales@example.com"
	defaultPassword  = "changeme123"
)

// Seeds a development database with an admin, one salesperson, and a few
// customers with renewals. Safe to run repeatedly.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Error(ctx, "refusing to seed a production environment", fmt.Errorf("env is %q", cfg.App.Env))
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "seed complete")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) error {
	usersRepo := users.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	renewalsRepo := renewals.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	preferencesRepo := notifications.NewPreferencesRepository(dbClient.DB())

	sched, err := scheduler.New(notificationsRepo, preferencesRepo, time.Now)
	if err != nil {
		return err
	}

	admin, err := ensureUser(ctx, usersRepo, cfg, adminEmail, "Admin", enums.UserRoleAdmin)
	if err != nil {
		return err
	}
	logg.Info(logg.WithUserID(ctx, admin.ID.String()), "admin user ready")

	salesperson, err := ensureUser(ctx, usersRepo, cfg, salespersonEmail, "Sam Seller", enums.UserRoleSalesperson)
	if err != nil {
		return err
	}

	samples := []struct {
		company  string
		contact  string
		email    string
		interval enums.IntervalType
		months   *int
		last     time.Time
	}{
		{"Acme Industrial", "Jo Plant", "jo@acme.example", enums.IntervalAnnual, nil, time.Now().AddDate(0, -8, 0)},
		{"Northfield Manufacturing", "Pat Lee", "pat@northfield.example", enums.IntervalBiAnnual, nil, time.Now().AddDate(0, -4, 0)},
		{"Harbor Cold Storage", "Devon Cruz", "devon@harbor.example", enums.IntervalThreeYear, nil, time.Now().AddDate(-1, 0, 0)},
	}

	for _, sample := range samples {
		customer, err := ensureCustomer(ctx, customersRepo, sample.company, sample.contact, sample.email, salesperson.ID)
		if err != nil {
			return err
		}

		existing, err := renewalsRepo.ListByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		due, err := scheduler.ComputeNextDueDate(sample.last, sample.interval, sample.months)
		if err != nil {
			return err
		}
		renewal, err := renewalsRepo.Create(ctx, &models.Renewal{
			CustomerID:            customer.ID,
			ServiceType:           enums.ServiceInfraredThermography,
			LastServiceDate:       sample.last,
			NextDueDate:           due,
			IntervalType:          sample.interval,
			CustomIntervalMonths:  sample.months,
			Status:                enums.RenewalStatusPending,
			AssignedSalespersonID: &salesperson.ID,
		})
		if err != nil {
			return err
		}
		if err := sched.ScheduleForRenewal(ctx, renewal); err != nil {
			return err
		}
	}

	return nil
}

func ensureUser(ctx context.Context, repo *users.Repository, cfg *config.Config, email, name string, role enums.UserRole) (*models.User, error) {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(defaultPassword, cfg.Password)
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	})
}

func ensureCustomer(ctx context.Context, repo *customers.Repository, company, contact, email string, salespersonID uuid.UUID) (*models.Customer, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].CompanyName, company) {
			return &existing[i], nil
		}
	}

	return repo.Create(ctx, customers.CreateCustomerDTO{
		CompanyName:           company,
		ContactName:           &contact,
		Email:                 &email,
		AssignedSalespersonID: &salespersonID,
	})
}
