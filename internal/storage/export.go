package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/lvfit/internal/fit"
)

type ExportData struct {
	RunMetadata
	Time     []float64 `json:"time"`
	Prey     []float64 `json:"prey"`
	Predator []float64 `json:"predator"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, traj *fit.Trajectory) error {
	data := ExportData{
		RunMetadata: *meta,
		Time:        traj.Time,
		Prey:        traj.Prey,
		Predator:    traj.Predator,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportCSV(w io.Writer, traj *fit.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "prey", "predator"}); err != nil {
		return err
	}
	for i := 0; i < traj.Len(); i++ {
		row := []string{
			strconv.FormatFloat(traj.Time[i], 'f', 6, 64),
			strconv.FormatFloat(traj.Prey[i], 'f', 6, 64),
			strconv.FormatFloat(traj.Predator[i], 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
