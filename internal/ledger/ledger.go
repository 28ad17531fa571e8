// Package ledger owns the rules that keep a project's paid/due totals
// consistent with its income records. All paid/due mutations in the
// application go through this service; handlers never adjust the totals
// themselves.
//
// The income-side and project-side writes are two sequential store calls,
// not a transaction. If the second write fails the caller surfaces the
// error and the store is left as the first write put it.
package ledger

import (
	"errors"
	"fmt"

	"studio-ledger/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrProjectNotFound means the referenced project does not exist in the
	// owner's scope.
	ErrProjectNotFound = errors.New("project not found")
	// ErrHasIncome means a project cannot be deleted while income records
	// still reference it.
	ErrHasIncome = errors.New("project still has income records")
)

// ApplyIncome returns the paid/due totals after adding deltaCents of income
// (delta may be negative when a record's amount is edited down). Due is
// floored at zero.
func ApplyIncome(totalCents, paidCents, deltaCents int64) (paid, due int64) {
	paid = paidCents + deltaCents
	due = totalCents - paid
	if due < 0 {
		due = 0
	}
	return paid, due
}

// RemoveIncome returns the paid/due totals after an income record of
// amountCents is deleted. Paid is floored at zero; due is recomputed from
// the floored paid, so it never exceeds the budget.
func RemoveIncome(totalCents, paidCents, amountCents int64) (paid, due int64) {
	paid = paidCents - amountCents
	if paid < 0 {
		paid = 0
	}
	due = totalCents - paid
	return paid, due
}

// DueAfterEdit returns the due total after a project edit. The stored paid
// total is derived from income records and must not change on edit.
func DueAfterEdit(totalCents, paidCents int64) int64 {
	return totalCents - paidCents
}

// Service applies the reconciliation rules against the store.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreateProject persists a new project. When initialPaidCents > 0 it also
// creates one income record dated at the project start, then re-asserts
// paid/due from the authoritative sum of income so a partial failure cannot
// leave the totals out of step with the records.
func (s *Service) CreateProject(p *models.Project, initialPaidCents int64, method string) (*models.IncomeRecord, error) {
	if method == "" {
		method = models.MethodBkash
	}

	p.PaidCents = initialPaidCents
	p.DueCents = p.TotalCents - initialPaidCents
	if err := s.DB.Create(p).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if initialPaidCents <= 0 {
		return nil, nil
	}

	rec := &models.IncomeRecord{
		UserID:      p.UserID,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		ClientName:  p.ClientName,
		AmountCents: initialPaidCents,
		Date:        p.StartDate,
		Method:      method,
	}
	if err := s.DB.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create initial income: %w", err)
	}

	if err := s.Resync(p); err != nil {
		return rec, err
	}
	return rec, nil
}

// UpdateProject saves edits to a project's own fields and recomputes due
// from the stored paid total. PaidCents is never written here: it belongs
// to the income records. The caller must have loaded p from the store so
// p.PaidCents holds the current derived value.
func (s *Service) UpdateProject(p *models.Project) error {
	p.DueCents = DueAfterEdit(p.TotalCents, p.PaidCents)
	return s.DB.Model(&models.Project{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"client_name": p.ClientName,
			"type":        p.Type,
			"total_cents": p.TotalCents,
			"due_cents":   p.DueCents,
			"status":      p.Status,
			"start_date":  p.StartDate,
			"deadline":    p.Deadline,
			"notes":       p.Notes,
		}).Error
}

// AddIncome creates an income record and rolls its amount into the parent
// project's totals. The project is re-read immediately before adjusting so
// the math starts from the currently persisted state, not a stale snapshot.
func (s *Service) AddIncome(rec *models.IncomeRecord) error {
	var p models.Project
	if err := s.DB.Where("id = ? AND user_id = ?", rec.ProjectID, rec.UserID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("load project: %w", err)
	}

	rec.ProjectName = p.Name
	rec.ClientName = p.ClientName
	if err := s.DB.Create(rec).Error; err != nil {
		return fmt.Errorf("create income: %w", err)
	}

	paid, due := ApplyIncome(p.TotalCents, p.PaidCents, rec.AmountCents)
	if err := s.updateTotals(p.ID, paid, due); err != nil {
		return err
	}
	return nil
}

// UpdateIncome saves edits to an income record and applies the amount delta
// to the parent project.
func (s *Service) UpdateIncome(rec *models.IncomeRecord, newAmountCents int64) error {
	var p models.Project
	if err := s.DB.Where("id = ? AND user_id = ?", rec.ProjectID, rec.UserID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("load project: %w", err)
	}

	delta := newAmountCents - rec.AmountCents
	rec.AmountCents = newAmountCents
	if err := s.DB.Save(rec).Error; err != nil {
		return fmt.Errorf("save income: %w", err)
	}

	if delta == 0 {
		return nil
	}
	paid, due := ApplyIncome(p.TotalCents, p.PaidCents, delta)
	return s.updateTotals(p.ID, paid, due)
}

// DeleteIncome removes an income record and reverses its effect on the
// parent project.
func (s *Service) DeleteIncome(rec *models.IncomeRecord) error {
	var p models.Project
	err := s.DB.Where("id = ? AND user_id = ?", rec.ProjectID, rec.UserID).
		First(&p).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load project: %w", err)
	}
	projectGone := errors.Is(err, gorm.ErrRecordNotFound)

	if err := s.DB.Delete(&models.IncomeRecord{}, rec.ID).Error; err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if projectGone {
		return nil
	}

	paid, due := RemoveIncome(p.TotalCents, p.PaidCents, rec.AmountCents)
	return s.updateTotals(p.ID, paid, due)
}

// DeleteProject removes a project. When income records still reference it
// the delete is rejected with ErrHasIncome so the caller can tell the user
// to remove the payments first; the store's foreign key backstops this.
func (s *Service) DeleteProject(id uint) error {
	var count int64
	if err := s.DB.Model(&models.IncomeRecord{}).
		Where("project_id = ?", id).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count income: %w", err)
	}
	if count > 0 {
		return ErrHasIncome
	}
	if err := s.DB.Delete(&models.Project{}, id).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Resync overwrites a project's paid/due totals from the authoritative sum
// of its income records and updates p in place.
func (s *Service) Resync(p *models.Project) error {
	var sum int64
	if err := s.DB.Model(&models.IncomeRecord{}).
		Where("project_id = ?", p.ID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error; err != nil {
		return fmt.Errorf("sum income: %w", err)
	}

	p.PaidCents = sum
	p.DueCents = p.TotalCents - sum
	if p.DueCents < 0 {
		p.DueCents = 0
	}
	return s.updateTotals(p.ID, p.PaidCents, p.DueCents)
}

func (s *Service) updateTotals(projectID uint, paidCents, dueCents int64) error {
	if err := s.DB.Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"paid_cents": paidCents,
			"due_cents":  dueCents,
		}).Error; err != nil {
		return fmt.Errorf("update project totals: %w", err)
	}
	return nil
}
