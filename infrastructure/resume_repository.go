package infrastructure

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"resume-ranker/domain"
)

type ResumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Create inserts one resume. Name, email and score must already be
// denormalized from the scorecard (see domain.NewResume).
func (r *ResumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		return &domain.PersistenceError{Op: "create resume", Err: err}
	}
	return nil
}

func (r *ResumeRepository) Get(ctx context.Context, id string) (*domain.Resume, error) {
	var resume domain.Resume
	if err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "resume", ID: id}
		}
		return nil, &domain.PersistenceError{Op: "get resume", Err: err}
	}
	return &resume, nil
}

// List returns one page of resumes and the total number matching filter.
// Score ordering puts resumes without a score last; every ordering ends on
// the id so pages never overlap.
func (r *ResumeRepository) List(ctx context.Context, filter domain.ResumeFilter, sort domain.ResumeSort, page domain.Page) ([]domain.Resume, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Resume{})
	if filter.JobID != nil {
		query = query.Where("job_description_id = ?", *filter.JobID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := containsPattern(term)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &domain.PersistenceError{Op: "count resumes", Err: err}
	}

	switch sort {
	case domain.SortByScore:
		query = query.Order("score IS NULL").Order("score DESC").Order("uploaded_on DESC")
	case domain.SortByName:
		query = query.Order("name IS NULL").Order("name ASC").Order("uploaded_on DESC")
	default:
		query = query.Order("uploaded_on DESC")
	}
	query = query.Order("id")

	resumes := []domain.Resume{}
	if err := query.Offset(page.Offset()).Limit(page.Size).Find(&resumes).Error; err != nil {
		return nil, 0, &domain.PersistenceError{Op: "list resumes", Err: err}
	}
	return resumes, total, nil
}

// UpdateStatus sets the status and returns the updated resume. The update and
// the read back share one transaction.
func (r *ResumeRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Resume, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{
			Field:   "status",
			Message: "must be one of New, Under Review, Interviewing, Offer, Hired, Rejected",
			Err:     domain.ErrInvalidStatus,
		}
	}

	var resume domain.Resume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Resume{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		return tx.First(&resume, "id = ?", id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "resume", ID: id}
		}
		return nil, &domain.PersistenceError{Op: "update resume status", Err: err}
	}
	return &resume, nil
}

func (r *ResumeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Resume{})
	if result.Error != nil {
		return &domain.PersistenceError{Op: "delete resume", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "resume", ID: id}
	}
	return nil
}

// BulkDelete removes every resume whose id is in ids with a single statement
// and returns how many rows went away. Unknown ids are ignored.
func (r *ResumeRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Resume{})
	if result.Error != nil {
		return 0, &domain.PersistenceError{Op: "bulk delete resumes", Err: result.Error}
	}
	return result.RowsAffected, nil
}

// DocumentKeys returns the stored document keys of the given resumes.
func (r *ResumeRepository) DocumentKeys(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var keys []string
	err := r.db.WithContext(ctx).Model(&domain.Resume{}).
		Where("id IN ? AND original_cv <> ''", ids).
		Pluck("original_cv", &keys).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list document keys", Err: err}
	}
	return keys, nil
}
