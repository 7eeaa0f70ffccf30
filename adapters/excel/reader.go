package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spikereview/domain/neuron"
	"spikereview/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReadExclusions loads an exclusion list from a clusters_excluded.csv file
// (filename,cluster_id rows, no header) or from the Excluded sheet of an
// exported review workbook
func ReadExclusions(path string) (neuron.ExclusionSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return neuron.ExclusionSet{}, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ReadExclusionsCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return neuron.ExclusionSet{}, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return readExcludedSheet(f)
	default:
		return neuron.ExclusionSet{}, errors.InvalidInput(fmt.Sprintf("unsupported exclusion file type: %s", path))
	}
}

// ReadExclusionsCSV parses filename,cluster_id rows. A leading header row
// and blank lines are skipped.
func ReadExclusionsCSV(r io.Reader) (neuron.ExclusionSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return neuron.ExclusionSet{}, errors.WithCode(errors.CodeValidationError, errors.Wrap(err, "parse exclusion csv"))
	}
	return parseRows(records)
}

// ReadWorkbookExclusions parses the Excluded sheet of a workbook stream
func ReadWorkbookExclusions(r io.Reader) (neuron.ExclusionSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return neuron.ExclusionSet{}, errors.WithCode(errors.CodeValidationError, errors.Wrap(err, "open workbook"))
	}
	defer f.Close()
	return readExcludedSheet(f)
}

func readExcludedSheet(f *excelize.File) (neuron.ExclusionSet, error) {
	rows, err := f.GetRows(ExcludedSheet)
	if err != nil {
		return neuron.ExclusionSet{}, errors.WithCode(errors.CodeValidationError, errors.Wrapf(err, "read %s sheet", ExcludedSheet))
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (neuron.ExclusionSet, error) {
	keys := make([]neuron.UnitKey, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if len(row) < 2 {
			return neuron.ExclusionSet{}, errors.ValidationErrorf("row %d: expected filename and cluster_id", i+1)
		}
		filename := strings.TrimSpace(row[0])
		clusterID, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			if i == 0 {
				continue // header
			}
			return neuron.ExclusionSet{}, errors.ValidationErrorf("row %d: cluster_id %q is not an integer", i+1, row[1])
		}
		keys = append(keys, neuron.NewUnitKey(filename, clusterID))
	}
	return neuron.NewExclusionSet(keys...), nil
}
