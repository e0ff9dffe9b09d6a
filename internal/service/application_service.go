package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kedorion/careers-api/internal/applog"
	"github.com/kedorion/careers-api/internal/domain"
	"github.com/kedorion/careers-api/internal/storage"
	"go.uber.org/zap"
)

// allowedExtensions is the resume file-type allow-list
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Verifier decides whether a submission's anti-abuse token passes.
// Implementations never return an error: any failure is a rejection.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// ApplicationService runs the submission pipeline: required fields,
// verification, size and type checks, resume persistence, log append.
// Each step short-circuits; nothing is written before every check passed.
type ApplicationService struct {
	storage     storage.Storage
	appLog      *applog.Store
	verifier    Verifier
	maxUploadMB int64
	logger      *zap.Logger
	validate    *validator.Validate
}

// NewApplicationService creates a new ApplicationService instance
func NewApplicationService(
	store storage.Storage,
	appLog *applog.Store,
	verifier Verifier,
	maxUploadMB int64,
	logger *zap.Logger,
) *ApplicationService {
	validate := validator.New()

	// Report field names as the form posts them
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ApplicationService{
		storage:     store,
		appLog:      appLog,
		verifier:    verifier,
		maxUploadMB: maxUploadMB,
		logger:      logger,
		validate:    validate,
	}
}

// Submit processes one application. On success the resume is on storage and
// one row was appended to the log; the returned Application mirrors that
// row. Rejections surface as the typed errors in the domain package.
func (s *ApplicationService) Submit(ctx context.Context, sub *domain.Submission) (*domain.Application, error) {
	if err := s.checkRequired(sub); err != nil {
		return nil, err
	}

	if !s.verifier.Verify(ctx, sub.RecaptchaToken) {
		return nil, domain.ErrVerificationFailed
	}

	if int64(len(sub.Resume)) > s.maxUploadMB*1024*1024 {
		return nil, &domain.FileTooLargeError{LimitMB: s.maxUploadMB}
	}

	ext := strings.ToLower(filepath.Ext(sub.ResumeFilename))
	if !allowedExtensions[ext] {
		return nil, domain.ErrUnsupportedFileType
	}

	storedName, err := s.storage.Save(ctx, sub.ResumeFilename, sub.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	app := &domain.Application{
		Timestamp:      time.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		Name:           sub.Name,
		Email:          sub.Email,
		Phone:          sub.Phone,
		Location:       sub.Location,
		StartDate:      sub.StartDate,
		Visa:           sub.Visa,
		Expertise:      strings.Join(sub.Expertise, ", "),
		Links:          strings.TrimSpace(sub.Links),
		WhyKedorion:    strings.TrimSpace(sub.Info),
		ResumeFilename: storedName,
	}

	if err := s.appLog.Append(app); err != nil {
		return nil, fmt.Errorf("failed to append application log: %w", err)
	}

	s.logger.Info("application received",
		zap.String("email", app.Email),
		zap.String("resume", storedName),
	)

	return app, nil
}

// checkRequired collects every empty required field, plus "resume" when the
// upload is missing, into one MissingFieldsError.
func (s *ApplicationService) checkRequired(sub *domain.Submission) error {
	var missing []string

	if err := s.validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate submission: %w", err)
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
	}

	if sub.ResumeFilename == "" {
		missing = append(missing, "resume")
	}

	if len(missing) > 0 {
		return &domain.MissingFieldsError{Fields: missing}
	}

	return nil
}
