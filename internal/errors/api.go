package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is a single error entry in a JSON error body
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse represents the complete error response
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

// Error codes
const (
	CodeRoomUnknown   = "ROOM_UNKNOWN"
	CodeFileUnknown   = "FILE_UNKNOWN"
	CodeEntryUnknown  = "ENTRY_UNKNOWN"
	CodeUploadUnknown = "UPLOAD_UNKNOWN"
	CodeNameInvalid   = "NAME_INVALID"
	CodeOffsetInvalid = "OFFSET_INVALID"
	CodeBodyInvalid   = "BODY_INVALID"
	CodeSizeInvalid   = "SIZE_INVALID"
	CodeUnknown       = "UNKNOWN"
)

// NewAPIError creates a new API error
func NewAPIError(code, message, detail string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewErrorResponse creates a new error response
func NewErrorResponse(errors ...*APIError) *ErrorResponse {
	errorList := make([]APIError, len(errors))
	for i, err := range errors {
		errorList[i] = *err
	}
	return &ErrorResponse{
		Errors: errorList,
	}
}

// WriteErrorResponse writes a JSON error response
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errors ...*APIError) {
	response := NewErrorResponse(errors...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(response)
}

// Common error creators
func RoomUnknown(room string) *APIError {
	return NewAPIError(CodeRoomUnknown, "room unknown", room)
}

func FileUnknown(name string) *APIError {
	return NewAPIError(CodeFileUnknown, "file unknown to room", name)
}

func EntryUnknown(id string) *APIError {
	return NewAPIError(CodeEntryUnknown, "pasteboard entry unknown to room", id)
}

func UploadUnknown(name string) *APIError {
	return NewAPIError(CodeUploadUnknown, "no upload in progress", name)
}

func NameInvalid(detail string) *APIError {
	return NewAPIError(CodeNameInvalid, "invalid name", detail)
}

func OffsetInvalid(offset string) *APIError {
	return NewAPIError(CodeOffsetInvalid, "offset must be a non-negative integer", offset)
}

func BodyInvalid(detail string) *APIError {
	return NewAPIError(CodeBodyInvalid, "request body invalid", detail)
}

func SizeInvalid(detail string) *APIError {
	return NewAPIError(CodeSizeInvalid, "request body too large", detail)
}

func Unknown(detail string) *APIError {
	return NewAPIError(CodeUnknown, "internal server error", detail)
}
