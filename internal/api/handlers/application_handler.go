package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codecraftlabs/site-server/internal/metrics"
	"github.com/codecraftlabs/site-server/internal/models"
	"github.com/codecraftlabs/site-server/internal/store"
)

// maxUploadBytes bounds the in-memory part of a resume upload.
const maxUploadBytes = 10 << 20

type ApplicationHandler struct {
	applications store.ApplicationStore
	purchases    store.PurchaseStore
	uploadsDir   string
	log          *zap.Logger
}

func NewApplicationHandler(applications store.ApplicationStore, purchases store.PurchaseStore, uploadsDir string, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		purchases:    purchases,
		uploadsDir:   uploadsDir,
		log:          log,
	}
}

// Create handles POST /api/applications (multipart, public). The optional
// resume file is streamed to the uploads dir under a generated unique name;
// everything else is form fields.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	app := models.Application{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		College:     r.FormValue("college"),
		Year:        r.FormValue("year"),
		Domain:      r.FormValue("domain"),
		Project:     r.FormValue("project"),
		CoverLetter: r.FormValue("coverLetter"),
	}
	if app.Name == "" || app.Email == "" || app.Phone == "" || app.Domain == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	resumePath, err := h.saveResume(r)
	if err != nil {
		h.log.Error("resume upload failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}
	app.Resume = resumePath

	stored, err := h.applications.Append(r.Context(), app)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordsAppended.WithLabelValues("applications").Inc()
	respondData(w, http.StatusOK, stored)
}

// List handles GET /api/applications (admin). Each entry is decorated with
// the txnId of a purchase sharing the applicant's email, resolved here at
// read time and never persisted.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	txnByEmail := map[string]string{}
	purchases, err := h.purchases.List(r.Context())
	if err != nil {
		// The join is best-effort; the admin view still works without it.
		h.log.Warn("purchase join skipped", zap.Error(err))
	} else {
		for _, p := range purchases {
			email := strings.ToLower(p.StudentEmail())
			if email == "" {
				continue
			}
			if _, ok := txnByEmail[email]; !ok {
				txnByEmail[email] = p.TxnID
			}
		}
	}

	out := make([]models.ApplicationWithTxn, 0, len(apps))
	for _, a := range apps {
		out = append(out, models.ApplicationWithTxn{
			Application: a,
			TxnID:       txnByEmail[strings.ToLower(a.Email)],
		})
	}
	respondData(w, http.StatusOK, out)
}

// saveResume streams the optional resume part to disk and returns its serving
// path, or nil when no file was attached. The generated name (timestamp,
// random suffix, original name) is the only collision avoidance needed.
func (h *ApplicationHandler) saveResume(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read resume part: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), suffix, filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	path := "/uploads/" + name
	return &path, nil
}
