package infrastructure

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"resume-ranker/domain"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.JobDescription) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return &domain.PersistenceError{Op: "create job", Err: err}
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id uint) (*domain.JobDescription, error) {
	var job domain.JobDescription
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "job description", ID: strconv.FormatUint(uint64(id), 10)}
		}
		return nil, &domain.PersistenceError{Op: "get job", Err: err}
	}
	return &job, nil
}

// List returns jobs newest first.
func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter, page domain.Page) ([]domain.JobDescription, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.JobDescription{})
	if filter.OwnerID != nil {
		query = query.Where("created_by_id = ?", *filter.OwnerID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := containsPattern(term)
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &domain.PersistenceError{Op: "count jobs", Err: err}
	}

	jobs := []domain.JobDescription{}
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, &domain.PersistenceError{Op: "list jobs", Err: err}
	}
	return jobs, total, nil
}

// Update saves title and description of a job owned by ownerID.
func (r *JobRepository) Update(ctx context.Context, job *domain.JobDescription, ownerID uint) error {
	existing, err := r.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	if !existing.OwnedBy(ownerID) {
		return domain.ErrForbidden
	}

	existing.Title = job.Title
	existing.Description = job.Description
	err = r.db.WithContext(ctx).Model(existing).
		Select("title", "description", "updated_at").
		Updates(existing).Error
	if err != nil {
		return &domain.PersistenceError{Op: "update job", Err: err}
	}
	*job = *existing
	return nil
}

// Delete removes a job owned by ownerID. Resumes referencing it are kept and
// their reference is cleared in the same transaction.
func (r *JobRepository) Delete(ctx context.Context, id uint, ownerID uint) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.OwnedBy(ownerID) {
		return domain.ErrForbidden
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Resume{}).
			Where("job_description_id = ?", id).
			Update("job_description_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.JobDescription{}, id).Error
	})
	if err != nil {
		return &domain.PersistenceError{Op: "delete job", Err: err}
	}
	return nil
}
