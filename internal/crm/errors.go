package crm

import "fmt"

// APIError is a call the CRM rejected: either a non-2xx status or a 2xx body
// that carries a detail message.
type APIError struct {
	Op         string // endpoint name, e.g. "contragents"
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}
