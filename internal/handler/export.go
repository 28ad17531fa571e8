package handler

import (
	"fmt"
	"net/http"
	"time"

	"studio-ledger/internal/scope"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the visible dataset out as JSON or as an XLSX
// workbook with one sheet per collection.
type ExportHandler struct {
	DB    *gorm.DB
	Cache *scope.Cache
}

func NewExportHandler(db *gorm.DB, cache *scope.Cache) *ExportHandler {
	return &ExportHandler{DB: db, Cache: cache}
}

// ExportJSON dumps the visible projects, clients, income records and
// expenses as one JSON document.
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load data")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"studio-ledger_%s.json\"",
		time.Now().Format("20060102")))
	c.JSON(http.StatusOK, gin.H{
		"exported_at": time.Now().Format(time.RFC3339),
		"projects":    snap.Projects,
		"clients":     snap.Clients,
		"income":      snap.Income,
		"expenses":    snap.Expenses,
	})
}

// ExportXLSX writes the visible dataset into a workbook with a sheet per
// collection.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	snap, err := loadVisible(c, h.DB, h.Cache, user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load data")
		return
	}

	f := excelize.NewFile()

	writeHeader := func(sheet string, headers []string) error {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		for i, hdr := range headers {
			cell := fmt.Sprintf("%c1", 'A'+i)
			if err := f.SetCellValue(sheet, cell, hdr); err != nil {
				return err
			}
		}
		return nil
	}

	const projectSheet = "Projects"
	if err := writeHeader(projectSheet, []string{
		"Name", "Client", "Type", "Status", "Total", "Paid", "Due", "Start Date", "Deadline",
	}); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build workbook")
		return
	}
	for idx, p := range snap.Projects {
		row := idx + 2
		f.SetCellValue(projectSheet, fmt.Sprintf("A%d", row), p.Name)
		f.SetCellValue(projectSheet, fmt.Sprintf("B%d", row), p.ClientName)
		f.SetCellValue(projectSheet, fmt.Sprintf("C%d", row), p.Type)
		f.SetCellValue(projectSheet, fmt.Sprintf("D%d", row), p.Status)
		f.SetCellValue(projectSheet, fmt.Sprintf("E%d", row), formatCents(p.TotalCents))
		f.SetCellValue(projectSheet, fmt.Sprintf("F%d", row), formatCents(p.PaidCents))
		f.SetCellValue(projectSheet, fmt.Sprintf("G%d", row), formatCents(p.DueCents))
		f.SetCellValue(projectSheet, fmt.Sprintf("H%d", row), p.StartDate)
		f.SetCellValue(projectSheet, fmt.Sprintf("I%d", row), p.Deadline)
	}
	f.SetColWidth(projectSheet, "A", "B", 24)
	f.SetColWidth(projectSheet, "C", "G", 12)
	f.SetColWidth(projectSheet, "H", "I", 12)

	const incomeSheet = "Income"
	if err := writeHeader(incomeSheet, []string{
		"Project", "Client", "Amount", "Date", "Method", "Notes",
	}); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build workbook")
		return
	}
	for idx, r := range snap.Income {
		row := idx + 2
		f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", row), r.ProjectName)
		f.SetCellValue(incomeSheet, fmt.Sprintf("B%d", row), r.ClientName)
		f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", row), formatCents(r.AmountCents))
		f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", row), r.Date)
		f.SetCellValue(incomeSheet, fmt.Sprintf("E%d", row), r.Method)
		f.SetCellValue(incomeSheet, fmt.Sprintf("F%d", row), r.Notes)
	}
	f.SetColWidth(incomeSheet, "A", "B", 24)
	f.SetColWidth(incomeSheet, "C", "E", 12)
	f.SetColWidth(incomeSheet, "F", "F", 30)

	const expenseSheet = "Expenses"
	if err := writeHeader(expenseSheet, []string{
		"Category", "Amount", "Date", "Notes",
	}); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build workbook")
		return
	}
	for idx, e := range snap.Expenses {
		row := idx + 2
		f.SetCellValue(expenseSheet, fmt.Sprintf("A%d", row), e.Category)
		f.SetCellValue(expenseSheet, fmt.Sprintf("B%d", row), formatCents(e.AmountCents))
		f.SetCellValue(expenseSheet, fmt.Sprintf("C%d", row), e.Date)
		f.SetCellValue(expenseSheet, fmt.Sprintf("D%d", row), e.Notes)
	}
	f.SetColWidth(expenseSheet, "A", "A", 18)
	f.SetColWidth(expenseSheet, "B", "C", 12)
	f.SetColWidth(expenseSheet, "D", "D", 30)

	const clientSheet = "Clients"
	if err := writeHeader(clientSheet, []string{
		"Name", "Contact",
	}); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build workbook")
		return
	}
	for idx, cl := range snap.Clients {
		row := idx + 2
		f.SetCellValue(clientSheet, fmt.Sprintf("A%d", row), cl.Name)
		f.SetCellValue(clientSheet, fmt.Sprintf("B%d", row), cl.Contact)
	}
	f.SetColWidth(clientSheet, "A", "B", 24)

	// drop the default sheet so Projects opens first
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(projectSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"studio-ledger_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
