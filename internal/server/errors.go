package server

import "fmt"

// Message ids of the localized API errors.
const (
	msgTaskNotFound     = "errTaskNotFound"
	msgProjectNotFound  = "errProjectNotFound"
	msgEmptyComment     = "errEmptyComment"
	msgInvalidStatus    = "errInvalidStatus"
	msgInvalidPayload   = "errInvalidPayload"
	msgLoginRequired    = "errLoginRequired"
	msgEndpointNotFound = "errEndpointNotFound"
	msgInternal         = "errInternal"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Details ErrorDetails `json:"error"`
}

// ErrorDetails carries the status code and a translated message.
type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Details.Code, e.Details.Message)
}

func newAPIError(code int, message string) APIError {
	return APIError{Details: ErrorDetails{Code: code, Message: message}}
}
