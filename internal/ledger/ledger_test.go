package ledger

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
	// in-memory sqlite: a second connection would see an empty database
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

func loadProject(t *testing.T, db *gorm.DB, id uint) models.Project {
	t.Helper()
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("load project %d: %v", id, err)
	}
	return p
}

// ---------- pure transitions ----------

func TestApplyIncome(t *testing.T) {
	cases := []struct {
		total, paid, delta int64
		wantPaid, wantDue  int64
	}{
		{100000, 0, 40000, 40000, 60000},
		{100000, 40000, 60000, 100000, 0},
		{100000, 40000, 70000, 110000, 0}, // overpaid: due floored
		{100000, 40000, -10000, 30000, 70000},
	}

	for _, tc := range cases {
		paid, due := ApplyIncome(tc.total, tc.paid, tc.delta)
		if paid != tc.wantPaid || due != tc.wantDue {
			t.Errorf("ApplyIncome(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.total, tc.paid, tc.delta, paid, due, tc.wantPaid, tc.wantDue)
		}
	}
}

func TestRemoveIncome(t *testing.T) {
	cases := []struct {
		total, paid, amount int64
		wantPaid, wantDue   int64
	}{
		{100000, 40000, 40000, 0, 100000},
		{100000, 40000, 10000, 30000, 70000},
		{100000, 30000, 40000, 0, 100000}, // paid floored at zero
	}

	for _, tc := range cases {
		paid, due := RemoveIncome(tc.total, tc.paid, tc.amount)
		if paid != tc.wantPaid || due != tc.wantDue {
			t.Errorf("RemoveIncome(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.total, tc.paid, tc.amount, paid, due, tc.wantPaid, tc.wantDue)
		}
	}
}

func TestDueAfterEdit(t *testing.T) {
	if got := DueAfterEdit(100000, 30000); got != 70000 {
		t.Errorf("DueAfterEdit(100000, 30000) = %d, want 70000", got)
	}
}

// ---------- service against the store ----------

func TestCreateProject_NoInitialPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Eid Nasheed", ClientName: "Hamid",
		Type: models.TypeNasheedSong, TotalCents: 100000,
		Status: models.StatusPending, StartDate: "2025-08-01",
	}
	rec, err := svc.CreateProject(p, 0, "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if rec != nil {
		t.Error("CreateProject with zero initial paid created an income record")
	}

	got := loadProject(t, db, p.ID)
	if got.PaidCents != 0 || got.DueCents != 100000 {
		t.Errorf("paid/due = %d/%d, want 0/100000", got.PaidCents, got.DueCents)
	}
}

func TestCreateProject_WithInitialPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Ramadan Ads", ClientName: "Karim",
		Type: models.TypeAds, TotalCents: 100000,
		Status: models.StatusInProgress, StartDate: "2025-08-01",
	}
	rec, err := svc.CreateProject(p, 25000, models.MethodCash)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if rec == nil {
		t.Fatal("CreateProject did not create the initial income record")
	}
	if rec.AmountCents != 25000 || rec.Date != "2025-08-01" || rec.Method != models.MethodCash {
		t.Errorf("income record = %+v", rec)
	}
	if rec.ProjectName != "Ramadan Ads" || rec.ClientName != "Karim" {
		t.Errorf("denormalized names = %q/%q", rec.ProjectName, rec.ClientName)
	}

	got := loadProject(t, db, p.ID)
	if got.PaidCents != 25000 || got.DueCents != 75000 {
		t.Errorf("paid/due = %d/%d, want 25000/75000", got.PaidCents, got.DueCents)
	}
}

func TestUpdateProject_PreservesPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Waz Recording", Type: models.TypeWaz,
		TotalCents: 50000, Status: models.StatusPending, StartDate: "2025-07-10",
	}
	if _, err := svc.CreateProject(p, 20000, models.MethodBkash); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// the handler loads fresh, edits fields, never touches paid
	edit := loadProject(t, db, p.ID)
	edit.TotalCents = 80000
	edit.Status = models.StatusInProgress
	if err := svc.UpdateProject(&edit); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	got := loadProject(t, db, p.ID)
	if got.PaidCents != 20000 {
		t.Errorf("paid = %d after edit, want 20000", got.PaidCents)
	}
	if got.DueCents != 60000 {
		t.Errorf("due = %d after edit, want 60000", got.DueCents)
	}
}

// TestLedgerConsistency runs a sequence of income create/edit/delete events
// and checks after each one that paid equals the sum of live records and
// due = max(0, total - paid).
func TestLedgerConsistency(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Album", Type: models.TypeNasheedSong,
		TotalCents: 200000, Status: models.StatusInProgress, StartDate: "2025-06-01",
	}
	if _, err := svc.CreateProject(p, 0, ""); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	check := func(step string) {
		t.Helper()
		var sum int64
		if err := db.Model(&models.IncomeRecord{}).
			Where("project_id = ?", p.ID).
			Select("COALESCE(SUM(amount_cents), 0)").
			Scan(&sum).Error; err != nil {
			t.Fatalf("%s: sum income: %v", step, err)
		}
		got := loadProject(t, db, p.ID)
		if got.PaidCents != sum {
			t.Errorf("%s: paid = %d, income sum = %d", step, got.PaidCents, sum)
		}
		wantDue := got.TotalCents - got.PaidCents
		if wantDue < 0 {
			wantDue = 0
		}
		if got.DueCents != wantDue {
			t.Errorf("%s: due = %d, want %d", step, got.DueCents, wantDue)
		}
	}

	r1 := &models.IncomeRecord{UserID: 1, ProjectID: p.ID, AmountCents: 50000, Date: "2025-06-05", Method: models.MethodBkash}
	if err := svc.AddIncome(r1); err != nil {
		t.Fatalf("AddIncome r1: %v", err)
	}
	check("after add 500")

	r2 := &models.IncomeRecord{UserID: 1, ProjectID: p.ID, AmountCents: 80000, Date: "2025-06-20", Method: models.MethodBank}
	if err := svc.AddIncome(r2); err != nil {
		t.Fatalf("AddIncome r2: %v", err)
	}
	check("after add 800")

	if err := svc.UpdateIncome(r1, 70000); err != nil {
		t.Fatalf("UpdateIncome: %v", err)
	}
	check("after edit 500 -> 700")

	if err := svc.DeleteIncome(r2); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	check("after delete 800")

	if err := svc.DeleteIncome(r1); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	check("after delete 700")
}

// TestDeleteIncome_ReversesLedger: total 1000, payment 400 (due 600),
// deleting the payment returns paid to 0 and due to 1000.
func TestDeleteIncome_ReversesLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Single", Type: models.TypeNasheedSong,
		TotalCents: 100000, Status: models.StatusPending, StartDate: "2025-08-01",
	}
	if _, err := svc.CreateProject(p, 0, ""); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rec := &models.IncomeRecord{UserID: 1, ProjectID: p.ID, AmountCents: 40000, Date: "2025-08-10", Method: models.MethodRocket}
	if err := svc.AddIncome(rec); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	got := loadProject(t, db, p.ID)
	if got.PaidCents != 40000 || got.DueCents != 60000 {
		t.Fatalf("paid/due = %d/%d, want 40000/60000", got.PaidCents, got.DueCents)
	}

	if err := svc.DeleteIncome(rec); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	got = loadProject(t, db, p.ID)
	if got.PaidCents != 0 || got.DueCents != 100000 {
		t.Errorf("paid/due = %d/%d, want 0/100000", got.PaidCents, got.DueCents)
	}
}

func TestDeleteProject_WithIncomeRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 1, Name: "Jingle", Type: models.TypeAds,
		TotalCents: 30000, Status: models.StatusPending, StartDate: "2025-08-01",
	}
	if _, err := svc.CreateProject(p, 10000, models.MethodCash); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if err := svc.DeleteProject(p.ID); !errors.Is(err, ErrHasIncome) {
		t.Fatalf("DeleteProject error = %v, want ErrHasIncome", err)
	}

	// remove the payment, then the delete goes through
	var rec models.IncomeRecord
	if err := db.Where("project_id = ?", p.ID).First(&rec).Error; err != nil {
		t.Fatalf("load income: %v", err)
	}
	if err := svc.DeleteIncome(&rec); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	if err := svc.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject after clearing income: %v", err)
	}
}

func TestAddIncome_UnknownProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	rec := &models.IncomeRecord{UserID: 1, ProjectID: 999, AmountCents: 1000, Date: "2025-08-01", Method: models.MethodCash}
	if err := svc.AddIncome(rec); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("AddIncome error = %v, want ErrProjectNotFound", err)
	}
}

func TestAddIncome_OtherOwnersProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := &models.Project{
		UserID: 2, Name: "Other", Type: models.TypeWaz,
		TotalCents: 10000, Status: models.StatusPending, StartDate: "2025-08-01",
	}
	if _, err := svc.CreateProject(p, 0, ""); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rec := &models.IncomeRecord{UserID: 1, ProjectID: p.ID, AmountCents: 1000, Date: "2025-08-01", Method: models.MethodCash}
	if err := svc.AddIncome(rec); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("AddIncome across owners error = %v, want ErrProjectNotFound", err)
	}
}
