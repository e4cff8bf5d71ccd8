// Package dataset loads observed trajectories from CSV files: state columns,
// an optional time column, and optional per-column normalization.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// TrajectoryOptions select the trajectory columns of a CSV file. Column names
// take precedence over indexes when a header is present.
type TrajectoryOptions struct {
	HasHeader bool
	// StateColumnNames name the state columns, in dimension order.
	StateColumnNames []string
	// StateColumnIndexes are used when no names are given. Empty means every
	// column except the time column.
	StateColumnIndexes []int
	TimeColumnName     string
	// TimeColumnIndex below 0 means no time column. The zero value selects
	// column 0; pass -1 when the file has no time column.
	TimeColumnIndex int
	// Normalize is applied per state column: none | minmax | zscore.
	Normalize string
}

// Trajectory is a loaded observation set: samples of the state and, when the
// file carries one, the sample times.
type Trajectory struct {
	X     [][]float64
	Times []float64
	// Names are the state column labels, synthesized x0.. when absent.
	Names []string
}

// LoadTrajectoryCSV reads a trajectory per the options. Blank rows are
// skipped; every kept row must parse in full.
func LoadTrajectoryCSV(in io.Reader, opts TrajectoryOptions) (Trajectory, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	stateIdx := append([]int(nil), opts.StateColumnIndexes...)
	timeIdx := opts.TimeColumnIndex
	var names []string

	row := 0
	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return Trajectory{}, fmt.Errorf("empty trajectory file")
		}
		if err != nil {
			return Trajectory{}, fmt.Errorf("read trajectory header: %w", err)
		}
		row++

		if strings.TrimSpace(opts.TimeColumnName) != "" {
			idx, err := columnIndexByName(header, opts.TimeColumnName)
			if err != nil {
				return Trajectory{}, err
			}
			timeIdx = idx
		}
		if len(opts.StateColumnNames) > 0 {
			stateIdx = make([]int, 0, len(opts.StateColumnNames))
			for _, name := range opts.StateColumnNames {
				idx, err := columnIndexByName(header, name)
				if err != nil {
					return Trajectory{}, err
				}
				stateIdx = append(stateIdx, idx)
			}
		}
		if len(stateIdx) == 0 {
			stateIdx = defaultStateIndexes(len(header), timeIdx)
		}
		names = stateNames(header, stateIdx)
	}

	x := make([][]float64, 0, 256)
	times := make([]float64, 0, 256)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Trajectory{}, fmt.Errorf("read trajectory row %d: %w", row+1, err)
		}
		row++
		if blankRecord(record) {
			continue
		}
		if len(stateIdx) == 0 {
			stateIdx = defaultStateIndexes(len(record), timeIdx)
			names = stateNames(nil, stateIdx)
		}

		sample := make([]float64, len(stateIdx))
		for d, idx := range stateIdx {
			if idx < 0 || idx >= len(record) {
				return Trajectory{}, fmt.Errorf("trajectory row %d missing state column index %d", row, idx)
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return Trajectory{}, fmt.Errorf("parse trajectory state row %d: %w", row, err)
			}
			sample[d] = value
		}
		x = append(x, sample)

		if timeIdx >= 0 {
			if timeIdx >= len(record) {
				return Trajectory{}, fmt.Errorf("trajectory row %d missing time column index %d", row, timeIdx)
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(record[timeIdx]), 64)
			if err != nil {
				return Trajectory{}, fmt.Errorf("parse trajectory time row %d: %w", row, err)
			}
			times = append(times, value)
		}
	}
	if len(x) == 0 {
		return Trajectory{}, fmt.Errorf("trajectory file has no data rows")
	}
	if names == nil {
		names = stateNames(nil, stateIdx)
	}

	if err := normalizeColumns(x, opts.Normalize); err != nil {
		return Trajectory{}, err
	}

	traj := Trajectory{X: x, Names: names}
	if timeIdx >= 0 {
		traj.Times = times
	}
	return traj, nil
}

func defaultStateIndexes(recordLen, timeIdx int) []int {
	out := make([]int, 0, recordLen)
	for idx := 0; idx < recordLen; idx++ {
		if idx == timeIdx {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func stateNames(header []string, indexes []int) []string {
	out := make([]string, 0, len(indexes))
	for i, idx := range indexes {
		switch {
		case len(header) > idx && idx >= 0 && strings.TrimSpace(header[idx]) != "":
			out = append(out, strings.TrimSpace(header[idx]))
		default:
			out = append(out, fmt.Sprintf("x%d", i))
		}
	}
	return out
}

func columnIndexByName(header []string, name string) (int, error) {
	want := strings.TrimSpace(strings.ToLower(name))
	for i, field := range header {
		if strings.ToLower(strings.TrimSpace(field)) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("csv column not found: %s", name)
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func normalizeColumns(x [][]float64, mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "none":
		return nil
	case "minmax":
		for d := 0; d < len(x[0]); d++ {
			normalizeMinMax(x, d)
		}
		return nil
	case "zscore":
		for d := 0; d < len(x[0]); d++ {
			normalizeZScore(x, d)
		}
		return nil
	default:
		return fmt.Errorf("unsupported trajectory normalization mode: %s", mode)
	}
}

func normalizeMinMax(x [][]float64, d int) {
	minValue, maxValue := x[0][d], x[0][d]
	for _, row := range x[1:] {
		if row[d] < minValue {
			minValue = row[d]
		}
		if row[d] > maxValue {
			maxValue = row[d]
		}
	}
	rangeValue := maxValue - minValue
	if rangeValue == 0 {
		for _, row := range x {
			row[d] = 0
		}
		return
	}
	for _, row := range x {
		row[d] = (row[d] - minValue) / rangeValue
	}
}

func normalizeZScore(x [][]float64, d int) {
	mean := 0.0
	for _, row := range x {
		mean += row[d]
	}
	mean /= float64(len(x))

	sumSq := 0.0
	for _, row := range x {
		diff := row[d] - mean
		sumSq += diff * diff
	}
	std := math.Sqrt(sumSq / float64(len(x)))
	if std == 0 {
		for _, row := range x {
			row[d] = 0
		}
		return
	}
	for _, row := range x {
		row[d] = (row[d] - mean) / std
	}
}
