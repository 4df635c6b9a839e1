package model

import (
	"fmt"
	"net/http"
	"regexp"

	log "github.com/sirupsen/logrus"
)

const (
	ErrorParams            = 100010
	ErrorNotFound          = 100011
	ErrorNewRepo           = 100012
	ErrorConfig            = 100013
	ErrorDB                = 100015
	ErrorUpstream          = 100020
	ErrorUpstreamAuth      = 100021
	ErrorUpstreamRateLimit = 100022
	ErrorEmbedding         = 100023
	ErrorSpeechInput       = 100030
	ErrorSpeechSynthesis   = 100031
	ErrorVoiceSession      = 100040
)

var ErrorMessages = map[int]string{
	ErrorParams:            "invalid request parameters",
	ErrorNotFound:          "record not found",
	ErrorNewRepo:           "failed to create repository",
	ErrorConfig:            "service is not configured",
	ErrorDB:                "db error",
	ErrorUpstream:          "upstream completion request failed",
	ErrorUpstreamAuth:      "invalid upstream credential",
	ErrorUpstreamRateLimit: "rate limited by upstream, try again shortly",
	ErrorEmbedding:         "embedding request failed",
	ErrorSpeechInput:       "text is required and must be under 4000 characters",
	ErrorSpeechSynthesis:   "speech synthesis failed",
	ErrorVoiceSession:      "voice session error",
}

type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	InnerError error  `json:"inner_error"`
}

func (err Error) Error() string {
	return err.Message
}

func (err Error) String() string {
	if err.InnerError == nil {
		return err.Message
	}
	return err.InnerError.Error()
}

func (err Error) Unwrap() error {
	return err.InnerError
}

// HTTPStatus maps the error code onto the status the API surface reports.
func (err Error) HTTPStatus() int {
	switch err.Code {
	case ErrorParams, ErrorSpeechInput:
		return http.StatusBadRequest
	case ErrorNotFound:
		return http.StatusNotFound
	case ErrorUpstreamAuth:
		return http.StatusUnauthorized
	case ErrorUpstreamRateLimit:
		return http.StatusTooManyRequests
	case ErrorDB:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewError(code int, innerError error) *Error {
	if innerError != nil {
		var re = regexp.MustCompile(`[\n\t]+`)
		innerErrorString := re.ReplaceAllString(fmt.Sprintf("%+v", innerError), " ")
		log.Errorf("NewError code:%d, message:%s, innerError:%+v\n", code, ErrorMessages[code], innerErrorString)
	}
	return &Error{
		Code:       code,
		Message:    ErrorMessages[code],
		InnerError: innerError,
	}
}

func NewErrorWithMessage(code int, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		InnerError: nil,
	}
}
