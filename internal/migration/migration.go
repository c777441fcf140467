package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the application. Non-postgres dialects and
// tests create them with AutoMigrate.
func Models() []any {
	return []any{
		&discountdomain.DiscountCode{},
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&paymentdomain.EventRecord{},
		&campaigndomain.CampaignLog{},
		&staffdomain.Key{},
	}
}

// Migrate brings the schema up to date for the connected dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return conn.AutoMigrate(Models()...)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB.
	return nil
}
