package domain

// ResumeSort is the ordering of a resume listing, spelled as the sort_by
// query parameter.
type ResumeSort string

const (
	SortByScore    ResumeSort = "-score"
	SortByName     ResumeSort = "name"
	SortByUploaded ResumeSort = "-uploaded_on"
)

func (s ResumeSort) Valid() bool {
	switch s {
	case SortByScore, SortByName, SortByUploaded:
		return true
	}
	return false
}

type ResumeFilter struct {
	JobID  *uint
	Search string
}

type JobFilter struct {
	Search  string
	OwnerID *uint
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
