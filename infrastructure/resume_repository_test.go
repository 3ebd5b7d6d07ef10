package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ranker/domain"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seedResume(t *testing.T, repo *ResumeRepository, name string, score *float64, jobID *uint, uploaded time.Time) *domain.Resume {
	t.Helper()
	email := name + "@example.com"
	card := domain.Scorecard{
		MatchScore:       score,
		BasicInformation: domain.BasicInformation{Name: &name, Email: &email},
	}
	resume := domain.NewResume(uuid.NewString(), card, jobID, domain.ModeComparative, uploaded)
	resume.ContractVersion = "2"
	resume.OriginalCV = "resumes/" + resume.ID + ".pdf"
	require.NoError(t, repo.Create(context.Background(), resume))
	return resume
}

func score(f float64) *float64 { return &f }

func names(resumes []domain.Resume) []string {
	out := make([]string, len(resumes))
	for i, r := range resumes {
		out[i] = *r.Name
	}
	return out
}

func TestResumeCreateAndGet(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()

	created := seedResume(t, repo, "ada", score(8.5), nil, base)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", *got.Name)
	assert.Equal(t, "ada@example.com", *got.Email)
	assert.Equal(t, 8.5, *got.Score)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Equal(t, 8.5, *got.Scorecard.Data().MatchScore)
	assert.Equal(t, []string{}, got.Scorecard.Data().RedFlags)

	_, err = repo.Get(ctx, uuid.NewString())
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResumeListByScoreNullsLast(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))

	seedResume(t, repo, "five", score(5), nil, base.Add(1*time.Minute))
	seedResume(t, repo, "null-old", nil, nil, base.Add(2*time.Minute))
	seedResume(t, repo, "nine", score(9), nil, base.Add(3*time.Minute))
	seedResume(t, repo, "null-new", nil, nil, base.Add(4*time.Minute))
	seedResume(t, repo, "seven", score(7), nil, base.Add(5*time.Minute))
	seedResume(t, repo, "seven-old", score(7), nil, base)

	resumes, total, err := repo.List(context.Background(), domain.ResumeFilter{}, domain.SortByScore, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Equal(t, []string{"nine", "seven", "seven-old", "five", "null-new", "null-old"}, names(resumes))
}

func TestResumeListOrderingAndPaging(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()

	seedResume(t, repo, "carol", score(6), nil, base)
	seedResume(t, repo, "alice", score(4), nil, base.Add(time.Minute))
	seedResume(t, repo, "bob", nil, nil, base.Add(2*time.Minute))

	byUpload, _, err := repo.List(ctx, domain.ResumeFilter{}, domain.SortByUploaded, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice", "carol"}, names(byUpload))

	byName, _, err := repo.List(ctx, domain.ResumeFilter{}, domain.SortByName, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names(byName))

	page2, total, err := repo.List(ctx, domain.ResumeFilter{}, domain.SortByName, domain.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"carol"}, names(page2))
}

func TestResumeListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewResumeRepository(db)
	ctx := context.Background()
	job := seedJob(t, db, "Go Engineer")

	seedResume(t, repo, "Grace", score(6), &job.ID, base)
	seedResume(t, repo, "Linus", score(4), &job.ID, base.Add(time.Minute))
	seedResume(t, repo, "Margaret", score(4), nil, base.Add(2*time.Minute))

	forJob, total, err := repo.List(ctx, domain.ResumeFilter{JobID: &job.ID}, domain.SortByScore, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Grace", "Linus"}, names(forJob))

	searched, _, err := repo.List(ctx, domain.ResumeFilter{Search: "GRA"}, domain.SortByUploaded, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Grace"}, names(searched))

	byEmail, _, err := repo.List(ctx, domain.ResumeFilter{Search: "margaret@"}, domain.SortByUploaded, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Margaret"}, names(byEmail))
}

func TestResumeSearchMatchesWildcardsLiterally(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()
	for i, name := range []string{"a_b", "axb", "100%", "1000", "hi!"} {
		seedResume(t, repo, name, nil, nil, base.Add(time.Duration(i)*time.Minute))
	}

	tests := map[string][]string{
		"a_b":  {"a_b"},
		"100%": {"100%"},
		"i!":   {"hi!"},
		"_":    {"a_b"},
	}
	for term, want := range tests {
		got, total, err := repo.List(ctx, domain.ResumeFilter{Search: term}, domain.SortByName, domain.Page{Number: 1, Size: 10})
		require.NoError(t, err)
		assert.EqualValues(t, len(want), total, term)
		assert.Equal(t, want, names(got), term)
	}
}

func TestResumeUpdateStatus(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()
	created := seedResume(t, repo, "ada", score(7), nil, base)

	updated, err := repo.UpdateStatus(ctx, created.ID, domain.StatusInterviewing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewing, updated.Status)
	assert.Equal(t, created.ID, updated.ID)

	again, err := repo.UpdateStatus(ctx, created.ID, domain.StatusInterviewing)
	require.NoError(t, err, "setting the current status is not a miss")
	assert.Equal(t, domain.StatusInterviewing, again.Status)

	_, err = repo.UpdateStatus(ctx, created.ID, domain.Status("Ghosted"))
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusHired)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewing, stored.Status)
}

func TestResumeBulkDeleteIsIdempotent(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()

	a := seedResume(t, repo, "a", nil, nil, base)
	b := seedResume(t, repo, "b", nil, nil, base)
	c := seedResume(t, repo, "c", nil, nil, base)
	ids := []string{a.ID, b.ID, uuid.NewString()}

	deleted, err := repo.BulkDelete(ctx, ids)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = repo.BulkDelete(ctx, ids)
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	_, err = repo.Get(ctx, c.ID)
	assert.NoError(t, err)

	deleted, err = repo.BulkDelete(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestResumeDeleteAndDocumentKeys(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	ctx := context.Background()
	a := seedResume(t, repo, "a", nil, nil, base)
	b := seedResume(t, repo, "b", nil, nil, base)

	keys, err := repo.DocumentKeys(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.OriginalCV, b.OriginalCV}, keys)

	require.NoError(t, repo.Delete(ctx, a.ID))
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, repo.Delete(ctx, a.ID), &notFound)
}
