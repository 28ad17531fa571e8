package scope

import (
	"errors"
	"testing"

	"studio-ledger/internal/database"
	"studio-ledger/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTwoOwners(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&models.Project{UserID: 1, Name: "P1", Type: models.TypeAds, Status: models.StatusPending, StartDate: "2025-08-01"},
		&models.Project{UserID: 2, Name: "P2", Type: models.TypeWaz, Status: models.StatusPending, StartDate: "2025-08-01"},
		&models.Client{UserID: 1, Name: "C1"},
		&models.Client{UserID: 2, Name: "C2"},
		&models.Expense{UserID: 1, Category: "Gear", AmountCents: 100, Date: "2025-08-01"},
		&models.Expense{UserID: 2, Category: "Gear", AmountCents: 200, Date: "2025-08-01"},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestEffectiveOwner(t *testing.T) {
	user := &models.User{ID: 7, Role: models.RoleUser}
	admin := &models.User{ID: 1, Role: models.RoleAdmin}

	// viewAs is ignored for regular users
	if owner, err := EffectiveOwner(user, 3); err != nil || owner != 7 {
		t.Errorf("user EffectiveOwner = (%d, %v), want (7, nil)", owner, err)
	}

	if owner, err := EffectiveOwner(admin, 3); err != nil || owner != 3 {
		t.Errorf("admin EffectiveOwner = (%d, %v), want (3, nil)", owner, err)
	}

	// admin without a selection may not create data
	if _, err := EffectiveOwner(admin, 0); !errors.Is(err, ErrNoSelection) {
		t.Errorf("admin without selection error = %v, want ErrNoSelection", err)
	}
}

// TestVisibleOwner_UserIsolation: a non-admin's visible set is always their
// own, whatever admin-only state says.
func TestVisibleOwner_UserIsolation(t *testing.T) {
	user := &models.User{ID: 7, Role: models.RoleUser}

	for _, viewAs := range []uint{0, 2, 7, 99} {
		owner, empty := VisibleOwner(user, viewAs)
		if owner != 7 || empty {
			t.Errorf("VisibleOwner(user, %d) = (%d, %v), want (7, false)", viewAs, owner, empty)
		}
	}
}

func TestVisibleOwner_AdminDefaultEmpty(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}

	if _, empty := VisibleOwner(admin, 0); !empty {
		t.Error("admin without selection should see the empty set")
	}
	if owner, empty := VisibleOwner(admin, 2); owner != 2 || empty {
		t.Error("admin with selection should see the selected user's rows")
	}
}

func TestCache_ViewFiltersByOwner(t *testing.T) {
	db := newTestDB(t)
	seedTwoOwners(t, db)
	cache := NewCache()

	snap, err := cache.View(db, 1)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(snap.Projects) != 1 || snap.Projects[0].UserID != 1 {
		t.Errorf("projects = %+v, want only owner 1", snap.Projects)
	}
	if len(snap.Clients) != 1 || len(snap.Expenses) != 1 {
		t.Errorf("clients/expenses = %d/%d, want 1/1", len(snap.Clients), len(snap.Expenses))
	}

	// no entity of another owner may appear
	for _, p := range snap.Projects {
		if p.UserID != 1 {
			t.Errorf("foreign project leaked: %+v", p)
		}
	}
}

// TestCache_NoSelectionEmpty: owner 0 is the admin's no-selection state and
// must return empty collections even with the master cache populated.
func TestCache_NoSelectionEmpty(t *testing.T) {
	db := newTestDB(t)
	seedTwoOwners(t, db)
	cache := NewCache()

	if _, err := cache.All(db); err != nil { // populate master cache
		t.Fatalf("All: %v", err)
	}

	snap, err := cache.View(db, 0)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(snap.Projects) != 0 || len(snap.Clients) != 0 || len(snap.Income) != 0 || len(snap.Expenses) != 0 {
		t.Errorf("no-selection view not empty: %+v", snap)
	}
}

// TestCache_SwitchSelectionNoRefetch: switching the selected user filters
// from the already-loaded cache; rows written after the load do not appear
// until the cache is marked stale.
func TestCache_SwitchSelectionNoRefetch(t *testing.T) {
	db := newTestDB(t)
	seedTwoOwners(t, db)
	cache := NewCache()

	if _, err := cache.View(db, 1); err != nil {
		t.Fatalf("View owner 1: %v", err)
	}

	// write behind the cache's back
	if err := db.Create(&models.Project{UserID: 2, Name: "P3", Type: models.TypeAds, Status: models.StatusPending, StartDate: "2025-08-02"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := cache.View(db, 2)
	if err != nil {
		t.Fatalf("View owner 2: %v", err)
	}
	if len(snap.Projects) != 1 {
		t.Errorf("owner 2 projects = %d, want 1 (cached view, no refetch)", len(snap.Projects))
	}

	cache.MarkStale()
	snap, err = cache.View(db, 2)
	if err != nil {
		t.Fatalf("View after MarkStale: %v", err)
	}
	if len(snap.Projects) != 2 {
		t.Errorf("owner 2 projects after refresh = %d, want 2", len(snap.Projects))
	}
}
