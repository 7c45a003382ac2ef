package auth

// Known OAuth scopes used by the maternity backend.
const (
	ScopeCareRead  = "care:read"
	ScopeCareWrite = "care:write"
)
