package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// MenuColumns is the export header.
var MenuColumns = []string{"date", "mealType", "servingTime", "isRecurring", "items"}

// ImportColumns extends MenuColumns with the optional columns accepted on import.
var ImportColumns = append(append([]string{}, MenuColumns...), "recurrenceEndsAt")

// utf8BOM lets spreadsheet tools detect UTF-8 in exported CSV files.
const utf8BOM = "\ufeff"

// MenuRowError reports why one imported row was skipped. Row counts the header as row 1.
type MenuRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ParsedMenuRow is a valid import row with its file position.
type ParsedMenuRow struct {
	Row  int
	Menu domain.MessMenu
}

// FormatItems flattens items as "name (TYPE)" joined by ", ".
func FormatItems(items []domain.MenuItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s (%s)", item.Name, item.Type)
	}
	return strings.Join(parts, ", ")
}

// ParseItems reverses FormatItems. Missing or unknown types default to VEG.
func ParseItems(s string) []domain.MenuItem {
	var items []domain.MenuItem
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, itemType := part, domain.DietVeg
		if open := strings.LastIndex(part, "("); open > 0 && strings.HasSuffix(part, ")") {
			name = strings.TrimSpace(part[:open])
			candidate := domain.DietaryType(strings.ToUpper(strings.TrimSpace(part[open+1 : len(part)-1])))
			if candidate.Valid() {
				itemType = candidate
			}
		}
		if name == "" {
			continue
		}
		items = append(items, domain.MenuItem{Name: name, Type: itemType})
	}
	return items
}

func menuRecord(m domain.MessMenu) []string {
	servingTime := ""
	if m.ServingTime != nil {
		servingTime = *m.ServingTime
	}
	recurring := "No"
	if m.IsRecurring {
		recurring = "Yes"
	}
	return []string{
		m.Date.Format(domain.DateLayout),
		string(m.MealType),
		servingTime,
		recurring,
		FormatItems(m.Items),
	}
}

// WriteMenusCSV writes a BOM, a header row and one row per menu.
func WriteMenusCSV(w io.Writer, menus []domain.MessMenu) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(MenuColumns); err != nil {
		return err
	}
	for _, m := range menus {
		if err := cw.Write(menuRecord(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMenusXLSX saves menus as a single-sheet workbook at path.
func WriteMenusXLSX(path string, menus []domain.MessMenu) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Menus"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := make([]interface{}, len(MenuColumns))
	for i, c := range MenuColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, m := range menus {
		record := menuRecord(m)
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// WriteImportTemplate writes the header plus one example row.
func WriteImportTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		ImportColumns,
		{"2025-01-06", "BREAKFAST", "08:00", "No", "Idli (VEG), Sambar (VEG), Omelette (NON_VEG)", ""},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// ErrEmptyImport is returned for files without data rows.
var ErrEmptyImport = errors.New("file contains no data rows")

// ParseMenuCSV reads an import file. It returns the valid rows, the per-row errors and the
// number of data rows seen. Only an unreadable file or one without data rows fails outright.
func ParseMenuCSV(r io.Reader) ([]ParsedMenuRow, []MenuRowError, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, 0, ErrEmptyImport
	}
	if err != nil {
		return nil, nil, 0, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))] = i
	}

	var (
		rows  []ParsedMenuRow
		errs  []MenuRowError
		total int
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		total++
		rowNum := total + 1
		if err != nil {
			errs = append(errs, MenuRowError{Row: rowNum, Error: err.Error()})
			continue
		}
		get := func(col string) string {
			if i, ok := columns[col]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		menu, rowErr := parseMenuRecord(get)
		if rowErr != "" {
			errs = append(errs, MenuRowError{Row: rowNum, Error: rowErr})
			continue
		}
		rows = append(rows, ParsedMenuRow{Row: rowNum, Menu: menu})
	}
	if total == 0 {
		return nil, nil, 0, ErrEmptyImport
	}
	return rows, errs, total, nil
}

func parseMenuRecord(get func(string) string) (domain.MessMenu, string) {
	var menu domain.MessMenu
	dateStr, mealStr, itemsStr := get("date"), get("mealType"), get("items")
	if dateStr == "" || mealStr == "" || itemsStr == "" {
		return menu, "missing required fields: date, mealType, items"
	}
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return menu, "invalid date format: " + dateStr
	}
	mealType := domain.MealType(strings.ToUpper(mealStr))
	if !mealType.Valid() {
		return menu, "invalid meal type: " + mealStr
	}
	items := ParseItems(itemsStr)
	if len(items) == 0 {
		return menu, "at least one menu item is required"
	}

	menu.Date = date
	menu.MealType = mealType
	menu.Items = items
	if st := get("servingTime"); st != "" {
		if !ValidClock(st) {
			return menu, "invalid serving time: " + st
		}
		menu.ServingTime = &st
	}
	if rec := get("isRecurring"); rec != "" {
		menu.IsRecurring = parseYes(rec)
	}
	if ends := get("recurrenceEndsAt"); ends != "" {
		endsAt, err := domain.ParseDate(ends)
		if err != nil {
			return menu, "invalid recurrenceEndsAt: " + ends
		}
		menu.RecurrenceEndsAt = &endsAt
	}
	return menu, ""
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// ValidClock reports whether s is a 24-hour HH:MM time.
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}
