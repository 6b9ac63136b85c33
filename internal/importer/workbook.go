package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

const (
	headerCompanyName              = "Company Name"
	headerContactName              = "Contact Name"
	headerEmail                    = "Email"
	headerPhone                    = "Phone"
	headerServiceType              = "Service Type"
	headerLastServiceDate          = "Last Service Date"
	headerNextDueDate              = "Next Due Date"
	headerIntervalType             = "Interval Type"
	headerCustomIntervalMonths     = "Custom Interval Months"
	headerStatus                   = "Status"
	headerNotes                    = "Notes"
	headerAssignedSalespersonEmail = "Assigned Salesperson Email"
)

// templateHeaders is the canonical column order used by the template.
// ParseWorkbook matches headers by name, so uploads may reorder them.
var templateHeaders = []string{
	headerCompanyName,
	headerContactName,
	headerEmail,
	headerPhone,
	headerServiceType,
	headerLastServiceDate,
	headerNextDueDate,
	headerIntervalType,
	headerCustomIntervalMonths,
	headerStatus,
	headerNotes,
	headerAssignedSalespersonEmail,
}

// ParseWorkbook reads the first sheet of an xlsx upload into import
// rows. maxRows bounds the number of data rows accepted; zero or
// negative means unbounded.
func ParseWorkbook(r io.Reader, maxRows int) ([]Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid workbook")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
	}
	cells, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read workbook rows")
	}
	if len(cells) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no header row")
	}

	columns, err := mapHeaders(cells[0])
	if err != nil {
		return nil, err
	}

	dataRows := cells[1:]
	if maxRows > 0 && len(dataRows) > maxRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("workbook has %d data rows, the limit is %d", len(dataRows), maxRows))
	}

	rows := make([]Row, 0, len(dataRows))
	for _, line := range dataRows {
		if isBlank(line) {
			continue
		}
		pick := func(header string) string {
			idx, ok := columns[header]
			if !ok || idx >= len(line) {
				return ""
			}
			return line[idx]
		}
		rows = append(rows, Row{
			CompanyName:              pick(headerCompanyName),
			ContactName:              pick(headerContactName),
			Email:                    pick(headerEmail),
			Phone:                    pick(headerPhone),
			ServiceType:              pick(headerServiceType),
			LastServiceDate:          pick(headerLastServiceDate),
			NextDueDate:              pick(headerNextDueDate),
			IntervalType:             pick(headerIntervalType),
			CustomIntervalMonths:     pick(headerCustomIntervalMonths),
			Status:                   pick(headerStatus),
			Notes:                    pick(headerNotes),
			AssignedSalespersonEmail: pick(headerAssignedSalespersonEmail),
		})
	}
	return rows, nil
}

// BuildTemplate produces the downloadable xlsx with the expected header
// row plus one example line.
func BuildTemplate() (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	if err := file.SetSheetRow(sheet, "A1", &templateHeaders); err != nil {
		return nil, fmt.Errorf("write template headers: %w", err)
	}

	example := []string{
		"Acme Industrial",
		"Jordan Smith",
		"jordan@acme.example",
		"555-0134",
		"Infrared Thermography Analysis",
		"2024-01-15",
		"2025-01-15",
		"annual",
		"",
		"pending",
		"Main plant inspection",
		"salesperson@example.com",
	}
	if err := file.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("write template example row: %w", err)
	}
	return file, nil
}

func mapHeaders(headerRow []string) (map[string]int, error) {
	columns := make(map[string]int, len(headerRow))
	for idx, raw := range headerRow {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = idx
		}
	}

	required := []string{headerCompanyName, headerLastServiceDate, headerNextDueDate, headerIntervalType}
	var missing []string
	for _, header := range required {
		if _, ok := columns[header]; !ok {
			missing = append(missing, header)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("workbook is missing required columns: %s", strings.Join(missing, ", ")))
	}
	return columns, nil
}

func isBlank(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
