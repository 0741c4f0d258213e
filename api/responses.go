package api

// Envelope is the uniform response wrapper the admin console consumes.
type Envelope struct {
	StatusCode int    `json:"statusCode" description:"HTTP status code"`
	Message    string `json:"message,omitempty" description:"Human-readable outcome"`
	Data       any    `json:"data,omitempty" description:"Response payload"`
	Succeeded  bool   `json:"succeeded" description:"Whether the call succeeded"`
}

// PagingMetaData describes the window of a paged response.
type PagingMetaData struct {
	CurrentPage int   `json:"currentPage" description:"1-based page number"`
	TotalPages  int   `json:"totalPages" description:"Total number of pages"`
	PageSize    int   `json:"pageSize" description:"Items per page"`
	TotalCount  int64 `json:"totalCount" description:"Total matching items"`
	HasPrevious bool  `json:"hasPrevious" description:"Whether a previous page exists"`
	HasNext     bool  `json:"hasNext" description:"Whether a next page exists"`
}

// Page wraps a page of items with its paging metadata.
type Page[T any] struct {
	PagingMetaData PagingMetaData `json:"pagingMetaData" description:"Paging metadata"`
	Data           []T            `json:"data" description:"Page of items"`
}

// CheckResponse is the response for an authorization check.
type CheckResponse struct {
	Authorized bool `json:"authorized" description:"Whether the permission set satisfies the requirement"`
}

func ok(status int, data any) *Envelope {
	return &Envelope{StatusCode: status, Data: data, Succeeded: true}
}

func newPagingMetaData(page, size int, total int64) PagingMetaData {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return PagingMetaData{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalCount:  total,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
