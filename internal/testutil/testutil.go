package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	pkgdb "github.com/Skotchmaster/pharmacy_shop/pkg/db"
)

// OpenInMemoryDB opens a migrated in-memory SQLite database closed on cleanup.
func OpenInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = pkgdb.Close(gdb) })

	if err := models.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

// Product returns a valid product with the given id and price.
func Product(id int, brand string, price float64) models.Product {
	return models.Product{
		ID:           id,
		Brand:        brand,
		Generic:      "Acetylsalicylic acid",
		Type:         "Pain Relief",
		Manufacturer: "Bayer",
		Price:        price,
		Image:        "https://img.example.com/" + brand + ".png",
		Description:  brand + " tablets",
		Rating:       4.5,
	}
}

func SeedProducts(t *testing.T, gdb *gorm.DB, products ...models.Product) {
	t.Helper()

	for i := range products {
		if err := gdb.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product %d: %v", products[i].ID, err)
		}
	}
}

// Clock is a settable time source for code that takes a Now func.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
