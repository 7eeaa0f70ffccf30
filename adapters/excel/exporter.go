package excel

import (
	"io"

	"spikereview/domain/neuron"
	"spikereview/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	UnitsSheet    = "Units"
	ExcludedSheet = "Excluded"
)

var (
	unitsHeader    = []interface{}{"filename", "cluster_id", "firing_rate_hz", "excluded"}
	excludedHeader = []interface{}{"filename", "cluster_id"}
)

// UnitRow is one reviewed unit as written to the workbook
type UnitRow struct {
	Key        neuron.UnitKey
	FiringRate *float64
	Excluded   bool
}

// RowsFromRecords pairs records with the canonical exclusion set
func RowsFromRecords(records []neuron.StatisticsRecord, set neuron.ExclusionSet) []UnitRow {
	rows := make([]UnitRow, len(records))
	for i, r := range records {
		rows[i] = UnitRow{Key: r.Key(), FiringRate: r.FiringRateHz, Excluded: set.Contains(r.Key())}
	}
	return rows
}

// BuildWorkbook lays out the review: every unit in review order on the Units
// sheet, and the exclusion set as (filename, cluster_id) rows on Excluded
func BuildWorkbook(rows []UnitRow, set neuron.ExclusionSet) (*excelize.File, error) {
	f := excelize.NewFile()

	// rename the default sheet so Units is first and active
	if err := f.SetSheetName("Sheet1", UnitsSheet); err != nil {
		return nil, errors.Wrap(err, "create units sheet")
	}
	if _, err := f.NewSheet(ExcludedSheet); err != nil {
		return nil, errors.Wrap(err, "create excluded sheet")
	}

	if err := f.SetSheetRow(UnitsSheet, "A1", &unitsHeader); err != nil {
		return nil, errors.Wrap(err, "write units header")
	}
	for i, row := range rows {
		var rate interface{}
		if row.FiringRate != nil {
			rate = *row.FiringRate
		}
		values := []interface{}{row.Key.Filename, row.Key.ClusterID, rate, row.Excluded}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(UnitsSheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "write unit %s", row.Key)
		}
	}

	if err := f.SetSheetRow(ExcludedSheet, "A1", &excludedHeader); err != nil {
		return nil, errors.Wrap(err, "write excluded header")
	}
	for i, key := range set.Keys() {
		values := []interface{}{key.Filename, key.ClusterID}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ExcludedSheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "write excluded %s", key)
		}
	}

	if err := f.SetPanes(UnitsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, errors.Wrap(err, "freeze header")
	}
	return f, nil
}

// WriteWorkbook streams the review workbook to w
func WriteWorkbook(w io.Writer, rows []UnitRow, set neuron.ExclusionSet) error {
	f, err := BuildWorkbook(rows, set)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
