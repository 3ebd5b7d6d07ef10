package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-ranker/domain"
	"resume-ranker/infrastructure"
)

type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) ([]domain.PageImage, error)
}

type Transport interface {
	Generate(ctx context.Context, req domain.LLMRequest) (string, error)
}

type JobLookup interface {
	Get(ctx context.Context, id uint) (*domain.JobDescription, error)
}

type ResumeStore interface {
	Create(ctx context.Context, resume *domain.Resume) error
	Get(ctx context.Context, id string) (*domain.Resume, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	DocumentKeys(ctx context.Context, ids []string) ([]string, error)
}

type Publisher interface {
	PublishResumeAnalyzed(ctx context.Context, event domain.ResumeAnalyzedEvent) error
}

type Deps struct {
	Rasterizer Rasterizer
	Transport  Transport
	Jobs       JobLookup
	Resumes    ResumeStore
	Blobs      infrastructure.BlobStore
	Events     Publisher
	Logger     infrastructure.Logger
}

// Service runs the resume analysis pipeline and owns the lifecycle of the
// stored documents.
type Service struct {
	rasterizer Rasterizer
	transport  Transport
	jobs       JobLookup
	resumes    ResumeStore
	blobs      infrastructure.BlobStore
	events     Publisher
	log        infrastructure.Logger
	tracer     trace.Tracer

	now   func() time.Time
	newID func() string
}

func NewService(deps Deps) *Service {
	return &Service{
		rasterizer: deps.Rasterizer,
		transport:  deps.Transport,
		jobs:       deps.Jobs,
		resumes:    deps.Resumes,
		blobs:      deps.Blobs,
		events:     deps.Events,
		log:        deps.Logger,
		tracer:     otel.Tracer("resume-ranker/analysis"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

type AnalyzeRequest struct {
	Filename         string
	Document         []byte
	JobDescriptionID *uint
}

type AnalyzeResult struct {
	Resume        *domain.Resume
	Method        Method
	TrailingBytes int
}

// Analyze scores one uploaded resume and stores it. Input and job reference
// problems are reported before the LLM is called. Nothing is stored when
// the reply cannot be turned into a scorecard.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (result *AnalyzeResult, err error) {
	ctx, span := s.tracer.Start(ctx, "analysis.Analyze")
	defer span.End()

	mode := domain.ModeStandalone
	if req.JobDescriptionID != nil {
		mode = domain.ModeComparative
	}
	span.SetAttributes(attribute.String("analysis.mode", string(mode)))
	defer func() {
		code := "OK"
		var coded domain.CodedError
		if errors.As(err, &coded) {
			code = string(coded.Code())
		} else if err != nil {
			code = "INTERNAL"
		}
		infrastructure.ResumesAnalyzed.WithLabelValues(string(mode), code).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
		}
	}()

	if len(req.Document) == 0 {
		return nil, domain.NewValidationError("file", "No file uploaded.")
	}

	var job *domain.JobDescription
	if req.JobDescriptionID != nil {
		job, err = s.jobs.Get(ctx, *req.JobDescriptionID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(job.Description) == "" {
			return nil, domain.NewValidationError("job_description_id", "job description has no text to compare against")
		}
	}
	mode = ModeOf(job)

	images, err := s.rasterize(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, BuildRequest(job, images))
	if err != nil {
		return nil, err
	}

	extraction, err := Extract(raw)
	if err != nil {
		var failure *domain.ExtractionFailure
		if errors.As(err, &failure) {
			infrastructure.ExtractionOutcomes.WithLabelValues(failure.Reason).Inc()
			s.log.Warn("scorecard extraction failed", map[string]interface{}{
				"reason":  failure.Reason,
				"details": failure.Details,
				"raw_len": len(failure.RawText),
			})
		}
		return nil, err
	}
	infrastructure.ExtractionOutcomes.WithLabelValues(string(extraction.Method)).Inc()
	if extraction.TrailingBytes > 0 {
		s.log.Debug("ignored trailing text after scorecard", map[string]interface{}{"bytes": extraction.TrailingBytes})
	}

	resume := domain.NewResume(s.newID(), extraction.Scorecard, req.JobDescriptionID, mode, s.now())
	resume.ContractVersion = ContractVersion
	resume.OriginalFilename = req.Filename
	resume.OriginalCV = infrastructure.DocumentKey(resume.ID, req.Filename)

	if err := s.blobs.Put(ctx, resume.OriginalCV, req.Document, "application/pdf"); err != nil {
		return nil, &domain.PersistenceError{Op: "store document", Err: err}
	}
	if err := s.resumes.Create(ctx, resume); err != nil {
		if delErr := s.blobs.Delete(ctx, resume.OriginalCV); delErr != nil {
			s.log.WithError(delErr).Warn("failed to remove orphaned document", map[string]interface{}{"key": resume.OriginalCV})
		}
		return nil, err
	}

	event := domain.ResumeAnalyzedEvent{
		ResumeID:         resume.ID,
		JobDescriptionID: resume.JobDescriptionID,
		AnalysisMode:     mode,
		Score:            resume.Score,
		Name:             resume.Name,
		UploadedOn:       resume.UploadedOn,
	}
	if err := s.events.PublishResumeAnalyzed(ctx, event); err != nil {
		s.log.WithError(err).Error("failed to publish resume event", map[string]interface{}{"resume_id": resume.ID})
	}

	s.log.Info("resume analyzed", map[string]interface{}{
		"resume_id": resume.ID,
		"mode":      string(mode),
		"method":    string(extraction.Method),
		"pages":     len(images),
	})
	return &AnalyzeResult{Resume: resume, Method: extraction.Method, TrailingBytes: extraction.TrailingBytes}, nil
}

func (s *Service) rasterize(ctx context.Context, document []byte) ([]domain.PageImage, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.Rasterize")
	defer span.End()

	images, err := s.rasterizer.Rasterize(ctx, document)
	switch {
	case errors.Is(err, domain.ErrUnreadableDocument):
		return nil, &domain.ValidationError{Field: "file", Message: "could not read the uploaded PDF", Err: err}
	case errors.Is(err, domain.ErrEmptyDocument):
		return nil, &domain.ValidationError{Field: "file", Message: "the uploaded PDF has no pages", Err: err}
	case err != nil:
		return nil, err
	}
	span.SetAttributes(attribute.Int("document.pages", len(images)))
	return images, nil
}

func (s *Service) generate(ctx context.Context, req domain.LLMRequest) (string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.Generate")
	defer span.End()

	raw, err := s.transport.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.reply_bytes", len(raw)))
	return raw, nil
}

// Delete removes a resume and its stored document.
func (s *Service) Delete(ctx context.Context, id string) error {
	resume, err := s.resumes.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resumes.Delete(ctx, id); err != nil {
		return err
	}
	s.removeDocuments(ctx, []string{resume.OriginalCV})
	return nil
}

// BulkDelete removes every listed resume that exists and returns how many
// were removed. Unknown ids are ignored.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	keys, err := s.resumes.DocumentKeys(ctx, ids)
	if err != nil {
		return 0, err
	}
	deleted, err := s.resumes.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.removeDocuments(ctx, keys)
	return deleted, nil
}

// OpenDocument returns the original upload of a resume.
func (s *Service) OpenDocument(ctx context.Context, id string) (*domain.Resume, io.ReadCloser, error) {
	resume, err := s.resumes.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if resume.OriginalCV == "" {
		return nil, nil, &domain.NotFoundError{Resource: "document", ID: id}
	}
	rc, err := s.blobs.Open(ctx, resume.OriginalCV)
	if err != nil {
		return nil, nil, err
	}
	return resume, rc, nil
}

func (s *Service) removeDocuments(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.WithError(err).Warn("failed to remove document", map[string]interface{}{"key": key})
		}
	}
}
