package interfaces

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-ranker/domain"
)

// pageResponse is the {count, next, previous, results} envelope of every
// list endpoint.
type pageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func parsePage(c *gin.Context) (domain.Page, bool) {
	page := domain.Page{Number: 1, Size: domain.DefaultPageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "page must be a positive integer")
			return page, false
		}
		page.Number = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "page_size must be a positive integer")
			return page, false
		}
		page.Size = min(n, domain.MaxPageSize)
	}
	return page, true
}

func (h *HTTPHandler) paginated(c *gin.Context, page domain.Page, total int64, results interface{}) pageResponse {
	resp := pageResponse{Count: total, Results: results}

	lastPage := int(math.Ceil(float64(total) / float64(page.Size)))
	if page.Number < lastPage {
		next := h.pageURL(c, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := h.pageURL(c, min(page.Number-1, max(lastPage, 1)))
		resp.Previous = &prev
	}
	return resp
}

func (h *HTTPHandler) pageURL(c *gin.Context, number int) string {
	u := *c.Request.URL
	q := u.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()

	if h.publicURL != "" {
		if base, err := url.Parse(h.publicURL); err == nil {
			u.Scheme = base.Scheme
			u.Host = base.Host
			return u.String()
		}
	}
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	u.Host = c.Request.Host
	return u.String()
}
