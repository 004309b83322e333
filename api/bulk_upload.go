package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"listing-manager/bulk"
)

// maxMemory is how much of a multipart body is buffered before spilling to
// temporary files.
const maxMemory = 32 << 20

type uploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	QueueSize int    `json:"queueSize"`
	BatchID   string `json:"batchId"`
	Appended  bool   `json:"appended"`
}

// BulkUploadHandler validates a CSV synchronously and queues its rows. The
// answer is 202: submission happens in the background.
func BulkUploadHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireCredential(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		if limit := d.Config.Bulk.MaxUploadBytes(); limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeError(w, mbe)
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
			return
		}
		file, header, err := r.FormFile("csvFile")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
			return
		}
		defer file.Close()

		if err := bulk.CheckExtension(header.Filename); err != nil {
			d.AccessLog.Write("[BULK_REJECTED] user=" + claims.Subject + " file=" + header.Filename + " reason=extension")
			writeError(w, err)
			return
		}
		format, err := bulk.ParseFormat(uploadFormat(r, d.Config.Bulk.DefaultFormat))
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, fmt.Errorf("read upload: %w", err))
			return
		}
		set, err := bulk.Load(data, format)
		if err != nil {
			d.AccessLog.Write("[BULK_REJECTED] user=" + claims.Subject + " file=" + header.Filename + " reason=" + err.Error())
			writeError(w, err)
			return
		}

		sub := d.Processor.Submit(set, format, claims.Credential)
		d.AccessLog.Writef("[BULK_UPLOAD] user=%s file=%s format=%s rows=%d batch=%s appended=%t",
			claims.Subject, header.Filename, format, sub.Added, sub.BatchID, sub.Appended)

		msg := fmt.Sprintf("%d listings queued for processing", sub.Added)
		if sub.Appended {
			msg = fmt.Sprintf("%d listings added to the running batch", sub.Added)
		}
		writeJSON(w, http.StatusAccepted, uploadResponse{
			Success:   true,
			Message:   msg,
			QueueSize: sub.QueueSize,
			BatchID:   sub.BatchID,
			Appended:  sub.Appended,
		})
	}
}

// uploadFormat takes the form field first, then the X-CSV-Format header.
func uploadFormat(r *http.Request, fallback string) string {
	if f := strings.TrimSpace(r.FormValue("format")); f != "" {
		return f
	}
	if f := strings.TrimSpace(r.Header.Get("X-CSV-Format")); f != "" {
		return f
	}
	return fallback
}
