package writer

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

const (
	sheetRecords = "Records"
	sheetGrouped = "Grouped"
	sheetSummary = "Summary"
)

var recordHeaders = []string{"Bank", "Account Number", "Username", "Account Holder", "Amount"}

// XLSXWriter writes a workbook with the records in input order, the records
// grouped by bank, and a per-bank summary.
type XLSXWriter struct{}

func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *XLSXWriter) Extension() string {
	return ".xlsx"
}

func (w *XLSXWriter) Write(out io.Writer, res models.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Creator:     "transfer-extractor",
		Description: fmt.Sprintf("%d records, format %s", res.Count(), res.Format),
	})

	if err := f.SetSheetName("Sheet1", sheetRecords); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	for _, name := range []string{sheetGrouped, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "create sheet %s", name)
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	if err := writeRecordSheet(f, styles, res); err != nil {
		return err
	}
	if err := writeGroupedSheet(f, styles, res); err != nil {
		return err
	}
	if err := writeSummarySheet(f, styles, res); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

type sheetStyles struct {
	header int
	group  int
	amount int
	total  int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, errors.Wrap(err, "header style")
	}
	s.group, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return s, errors.Wrap(err, "group style")
	}
	// #,##0
	s.amount, err = f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return s, errors.Wrap(err, "amount style")
	}
	s.total, err = f.NewStyle(&excelize.Style{NumFmt: 3, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, errors.Wrap(err, "total style")
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrapf(err, "%s header", sheet)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return nil
}

func writeRecordRow(f *excelize.File, sheet string, row int, rec models.Record) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	values := []interface{}{rec.Bank, rec.AccountNumber, rec.Username, rec.AccountHolderName, rec.Amount}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "%s row %d", sheet, row)
	}
	return nil
}

func setRecordColumns(f *excelize.File, sheet string) {
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "C", 20)
	f.SetColWidth(sheet, "D", "D", 30)
	f.SetColWidth(sheet, "E", "E", 16)
}

func writeRecordSheet(f *excelize.File, styles sheetStyles, res models.Result) error {
	if err := writeHeader(f, sheetRecords, styles.header, recordHeaders); err != nil {
		return err
	}
	for i, rec := range res.Records {
		if err := writeRecordRow(f, sheetRecords, i+2, rec); err != nil {
			return err
		}
	}
	setRecordColumns(f, sheetRecords)

	if n := res.Count(); n > 0 {
		f.SetCellStyle(sheetRecords, "E2", fmt.Sprintf("E%d", n+1), styles.amount)
		if err := f.AutoFilter(sheetRecords, fmt.Sprintf("A1:E%d", n+1), nil); err != nil {
			return errors.Wrap(err, "records autofilter")
		}
	}
	return nil
}

func writeGroupedSheet(f *excelize.File, styles sheetStyles, res models.Result) error {
	if err := writeHeader(f, sheetGrouped, styles.header, recordHeaders); err != nil {
		return err
	}

	row := 2
	for _, g := range res.Grouped() {
		cell := fmt.Sprintf("A%d", row)
		label := fmt.Sprintf("%s (%d)", g.Bank, len(g.Records))
		if err := f.SetCellValue(sheetGrouped, cell, label); err != nil {
			return errors.Wrap(err, "group label")
		}
		f.SetCellStyle(sheetGrouped, cell, fmt.Sprintf("E%d", row), styles.group)
		row++

		for _, rec := range g.Records {
			if err := writeRecordRow(f, sheetGrouped, row, rec); err != nil {
				return err
			}
			f.SetCellStyle(sheetGrouped, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), styles.amount)
			row++
		}
	}
	setRecordColumns(f, sheetGrouped)
	return nil
}

func writeSummarySheet(f *excelize.File, styles sheetStyles, res models.Result) error {
	if err := writeHeader(f, sheetSummary, styles.header, []string{"Bank", "Count", "Total"}); err != nil {
		return err
	}

	row := 2
	for _, g := range res.Grouped() {
		values := []interface{}{g.Bank, len(g.Records), g.Total()}
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", row), &values); err != nil {
			return errors.Wrap(err, "summary row")
		}
		f.SetCellStyle(sheetSummary, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.amount)
		row++
	}

	values := []interface{}{"TOTAL", res.Count(), res.TotalAmount}
	if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", row), &values); err != nil {
		return errors.Wrap(err, "summary total")
	}
	f.SetCellStyle(sheetSummary, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), styles.total)

	for _, col := range []string{"A", "B", "C"} {
		f.SetColWidth(sheetSummary, col, col, 18)
	}
	return nil
}
