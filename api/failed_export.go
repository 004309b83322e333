package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"listing-manager/worker"
)

const errorColumn = "error"

// FailedExportHandler downloads the failed rows of the current batch so they
// can be fixed and uploaded again. Parameter type=csv|xlsx (default csv).
func FailedExportHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireSession(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		fileType := strings.ToLower(r.URL.Query().Get("type"))
		if fileType == "" {
			fileType = "csv"
		}
		header, records := failedRecords(d.Reporter.FailedJobs())
		stamp := time.Now().Format("20060102-150405")

		d.AccessLog.Writef("[FAILED_EXPORT] user=%s type=%s rows=%d", claims.Subject, fileType, len(records))
		switch fileType {
		case "excel", "xlsx":
			file, err := buildWorkbook(header, records)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"failed_%s.xlsx\"", stamp))
			if err := file.Write(w); err != nil {
				writeError(w, err)
			}
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"failed_%s.csv\"", stamp))
			cw := csv.NewWriter(w)
			cw.Write(header)
			cw.WriteAll(records)
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be csv or xlsx"})
		}
	}
}

// failedRecords lays failed jobs out under the union of their columns, in
// first-seen order, with the failure message last. The message column is
// "error", suffixed when the upload already had a column of that name.
func failedRecords(jobs []worker.Job) ([]string, [][]string) {
	var header []string
	seen := map[string]bool{}
	for _, j := range jobs {
		for _, c := range j.Columns {
			if c != "" && !seen[c] {
				seen[c] = true
				header = append(header, c)
			}
		}
	}
	records := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rec := make([]string, 0, len(header)+1)
		for _, c := range header {
			rec = append(rec, j.Row[c])
		}
		records = append(records, append(rec, j.Error))
	}
	return append(header, freeColumn(errorColumn, seen)), records
}

func freeColumn(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for i := 1; ; i++ {
		if c := fmt.Sprintf("%s_%d", name, i); !taken[c] {
			return c
		}
	}
}

func buildWorkbook(header []string, records [][]string) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Failed listings")
	if err != nil {
		return nil, err
	}
	for _, rec := range append([][]string{header}, records...) {
		row := sheet.AddRow()
		for _, v := range rec {
			row.AddCell().SetString(v)
		}
	}
	return file, nil
}
