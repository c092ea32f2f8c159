package basket

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alex-Easy/diploma-try-2/internal/domain"
)

const testUserID = 1001

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// In-memory sqlite is per connection, keep the pool at one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id, quantity int64) {
	t.Helper()
	if err := db.Create(&domain.Category{ID: 1, Name: "Smartphones"}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	shop := domain.Shop{Name: fmt.Sprintf("Shop-%d", id), State: true}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	product := domain.Product{
		ID:         id,
		CategoryID: 1,
		ShopID:     shop.ID,
		Name:       "Phone",
		Quantity:   quantity,
		Parameters: map[string]interface{}{},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestAddCreatesLine(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if line.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", line.Quantity)
	}
	if line.UserID != testUserID || line.ProductID != 42 {
		t.Errorf("line = %+v", line)
	}
}

func TestAddAccumulatesExistingLine(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	first, err := svc.Add(context.Background(), testUserID, 42, 3)
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}
	second, err := svc.Add(context.Background(), testUserID, 42, 4)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second add created a new line: %d != %d", second.ID, first.ID)
	}
	if second.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", second.Quantity)
	}

	var count int64
	db.Model(&domain.Basket{}).Where("user_id = ?", testUserID).Count(&count)
	if count != 1 {
		t.Errorf("lines = %d, want 1", count)
	}
}

func TestAddRejectsInsufficientStock(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 5)
	svc := NewService(db)

	if _, err := svc.Add(context.Background(), testUserID, 42, 3); err != nil {
		t.Fatalf("Add within stock: %v", err)
	}

	_, err := svc.Add(context.Background(), testUserID, 42, 3)
	if !IsInsufficientStock(err) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	if err.Error() != "Not enough stock for product 42" {
		t.Errorf("message = %q", err.Error())
	}

	// The failed add must not touch the existing line.
	var line domain.Basket
	if err := db.Where("user_id = ?", testUserID).First(&line).Error; err != nil {
		t.Fatalf("load line: %v", err)
	}
	if line.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", line.Quantity)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 5)
	svc := NewService(db)

	for _, q := range []int64{0, -1} {
		if _, err := svc.Add(context.Background(), testUserID, 42, q); !errors.Is(err, ErrQuantityNotPositive) {
			t.Errorf("Add(%d) err = %v, want ErrQuantityNotPositive", q, err)
		}
	}
}

func TestAddUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	if _, err := svc.Add(context.Background(), testUserID, 999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestListScopedToUser(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	if _, err := svc.Add(context.Background(), testUserID, 42, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(context.Background(), testUserID+1, 42, 1); err != nil {
		t.Fatalf("Add for other user: %v", err)
	}

	lines, err := svc.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Product == nil || lines[0].Product.ID != 42 {
		t.Errorf("product not preloaded: %+v", lines[0].Product)
	}
}

func TestUpdateQuantities(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	err = svc.UpdateQuantities(context.Background(), testUserID, []QuantityUpdate{
		{ID: line.ID, Quantity: 8},
	})
	if err != nil {
		t.Fatalf("UpdateQuantities: %v", err)
	}

	var fresh domain.Basket
	if err := db.First(&fresh, line.ID).Error; err != nil {
		t.Fatalf("load line: %v", err)
	}
	if fresh.Quantity != 8 {
		t.Errorf("quantity = %d, want 8", fresh.Quantity)
	}
}

func TestUpdateQuantitiesUnknownLineAbortsBatch(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	err = svc.UpdateQuantities(context.Background(), testUserID, []QuantityUpdate{
		{ID: line.ID, Quantity: 5},
		{ID: 987654, Quantity: 1},
	})
	var lnf *LineNotFoundError
	if !errors.As(err, &lnf) {
		t.Fatalf("err = %v, want LineNotFoundError", err)
	}
	if lnf.LineID != 987654 {
		t.Errorf("line id = %d, want 987654", lnf.LineID)
	}

	var fresh domain.Basket
	if err := db.First(&fresh, line.ID).Error; err != nil {
		t.Fatalf("load line: %v", err)
	}
	if fresh.Quantity != 2 {
		t.Errorf("quantity = %d, want the batch rolled back to 2", fresh.Quantity)
	}
}

func TestUpdateQuantitiesRejectsOverdraw(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 5)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	err = svc.UpdateQuantities(context.Background(), testUserID, []QuantityUpdate{
		{ID: line.ID, Quantity: 6},
	})
	if !IsInsufficientStock(err) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	removed, err := svc.Remove(context.Background(), testUserID, []int64{line.ID})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestRemoveNothingMatched(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	_, err := svc.Remove(context.Background(), testUserID, []int64{12345})
	if !errors.Is(err, ErrItemsNotFound) {
		t.Fatalf("err = %v, want ErrItemsNotFound", err)
	}
	if err.Error() != "Basket items not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRemoveIgnoresOtherUsersLines(t *testing.T) {
	db := openTestDB(t)
	seedProduct(t, db, 42, 10)
	svc := NewService(db)

	line, err := svc.Add(context.Background(), testUserID, 42, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := svc.Remove(context.Background(), testUserID+1, []int64{line.ID}); !errors.Is(err, ErrItemsNotFound) {
		t.Fatalf("err = %v, want ErrItemsNotFound", err)
	}

	var count int64
	db.Model(&domain.Basket{}).Count(&count)
	if count != 1 {
		t.Errorf("line was deleted by a foreign user")
	}
}
