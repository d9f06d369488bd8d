package dto

import "crm/internal/bulk"

// BulkItemError reports one rejected item of a bulk request.
type BulkItemError struct {
	Index   int    `json:"index"`
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBulkItemErrors(failures []bulk.Failure) []BulkItemError {
	out := make([]BulkItemError, len(failures))
	for i, f := range failures {
		out[i] = BulkItemError{
			Index:   f.Index,
			Row:     f.Row,
			Code:    string(f.Code),
			Message: f.Message,
		}
	}
	return out
}
