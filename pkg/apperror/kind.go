package apperror

type Kind string

var (
	InvalidInput Kind = "invalid_input"
	NotFound     Kind = "not_found"
	Conflict     Kind = "conflict"
	Unauthorised Kind = "unauthorised"
	Forbidden    Kind = "forbidden"
	Internal     Kind = "internal"
	Dependency   Kind = "dependency_failure"
)
