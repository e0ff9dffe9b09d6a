package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kedorion/careers-api/internal/domain"
	"github.com/kedorion/careers-api/internal/service"
	"go.uber.org/zap"
)

// formMemoryLimit is how much of a parsed multipart body is kept in memory
// before spilling to temp files.
const formMemoryLimit = 32 << 20

// bodySlack is headroom on top of the upload ceiling for the non-file form
// fields, so the real size check (with its itemized message) is the one
// that rejects oversized resumes.
const bodySlack = 1 << 20

// ApplicationHandler accepts job-application form posts
type ApplicationHandler struct {
	service     *service.ApplicationService
	maxUploadMB int64
	logger      *zap.Logger
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(svc *service.ApplicationService, maxUploadMB int64, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service:     svc,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// Apply handles POST /apply: a multipart form with the applicant's contact
// fields and a resume file. Responds 200 with a confirmation message, or
// 400 with a human-readable rejection.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	// Bound the request body. The slack keeps a marginally oversized
	// resume inside the parser so the size check below produces the
	// message that names the configured limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024+bodySlack)

	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondMessage(w, http.StatusBadRequest, h.tooLargeMessage())
			return
		}
		respondMessage(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	sub := &domain.Submission{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		Phone:          strings.TrimSpace(r.FormValue("phone")),
		Location:       strings.TrimSpace(r.FormValue("location")),
		StartDate:      strings.TrimSpace(r.FormValue("start_date")),
		Visa:           strings.TrimSpace(r.FormValue("visa")),
		Expertise:      r.Form["expertise[]"],
		Links:          r.FormValue("links"),
		Info:           r.FormValue("info"),
		RecaptchaToken: r.FormValue("recaptcha_token"),
	}

	file, header, err := r.FormFile("resume")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid form submission.")
			return
		}
		sub.ResumeFilename = header.Filename
		sub.Resume = data
	}

	app, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		h.respondSubmissionError(w, err)
		return
	}

	h.logger.Debug("application accepted", zap.String("resume", app.ResumeFilename))
	respondMessage(w, http.StatusOK, "Application received. Thank you!")
}

// respondSubmissionError maps pipeline errors to client responses. Anything
// not a known rejection (notably a log-store failure after recovery) is an
// internal error.
func (h *ApplicationHandler) respondSubmissionError(w http.ResponseWriter, err error) {
	var missingErr *domain.MissingFieldsError
	if errors.As(err, &missingErr) {
		respondMessage(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missingErr.Fields, ", "))
		return
	}

	if errors.Is(err, domain.ErrVerificationFailed) {
		respondMessage(w, http.StatusBadRequest, "reCAPTCHA verification failed.")
		return
	}

	var tooLargeErr *domain.FileTooLargeError
	if errors.As(err, &tooLargeErr) {
		respondMessage(w, http.StatusBadRequest, h.tooLargeMessage())
		return
	}

	if errors.Is(err, domain.ErrUnsupportedFileType) {
		respondMessage(w, http.StatusBadRequest, "Unsupported file type. Please upload PDF/DOC/DOCX.")
		return
	}

	h.logger.Error("failed to process application", zap.Error(err))
	respondMessage(w, http.StatusInternalServerError, "Failed to process application.")
}

func (h *ApplicationHandler) tooLargeMessage() string {
	return fmt.Sprintf("File too large (>%dMB).", h.maxUploadMB)
}
