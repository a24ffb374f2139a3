package types

// SuccessEnvelope wraps every JSON success payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ListResult is the data shape of admin list endpoints.
type ListResult[T any] struct {
	Items      []T    `json:"items"`
	Count      int    `json:"count"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func NewListResult[T any](items []T, nextCursor string) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{Items: items, Count: len(items), NextCursor: nextCursor}
}
