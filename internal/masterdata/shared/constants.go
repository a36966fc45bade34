package shared

const (
	// PageSize is the fixed number of records per list page.
	PageSize = 20

	// PageParam is the query parameter selecting a page.
	PageParam = "page"
	// LastPage selects the final page.
	LastPage = "last"

	// MaxUploadSize bounds multipart request bodies.
	MaxUploadSize = 10 << 20

	// MaxInteger is the upper bound of positive integer columns.
	MaxInteger = 2147483647
)
