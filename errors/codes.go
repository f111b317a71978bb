package errors

// ErrorCode identifies a class of application failure
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND

	// Gateway / authentication
	ErrorCode_AUTH_MISSING_CREDENTIALS
	ErrorCode_AUTH_INVALID_SIGNATURE
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_PAYLOAD_INVALID
	ErrorCode_DEDUP_STORE_FAILED

	// Pipeline
	ErrorCode_CONTEXT_LOAD_FAILED
	ErrorCode_AI_UPSTREAM_FAILED
	ErrorCode_AI_DECLINED
	ErrorCode_AI_MALFORMED_OUTPUT

	// Mutation engine
	ErrorCode_MUTATION_FAILED
	ErrorCode_MUTATION_PATH_REJECTED
	ErrorCode_COMMIT_FAILED

	// Best-effort side effects
	ErrorCode_NOTIFICATION_FAILED
	ErrorCode_PRESENTATION_FAILED

	// Dead letters
	ErrorCode_DEADLETTER_NOT_FOUND
	ErrorCode_DEADLETTER_STORE_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                  "UNKNOWN",
	ErrorCode_HTTP_OK:                  "HTTP_OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
	ErrorCode_AUTH_MISSING_CREDENTIALS: "AUTH_MISSING_CREDENTIALS",
	ErrorCode_AUTH_INVALID_SIGNATURE:   "AUTH_INVALID_SIGNATURE",
	ErrorCode_AUTH_INVALID_TOKEN:       "AUTH_INVALID_TOKEN",
	ErrorCode_PAYLOAD_INVALID:          "PAYLOAD_INVALID",
	ErrorCode_DEDUP_STORE_FAILED:       "DEDUP_STORE_FAILED",
	ErrorCode_CONTEXT_LOAD_FAILED:      "CONTEXT_LOAD_FAILED",
	ErrorCode_AI_UPSTREAM_FAILED:       "AI_UPSTREAM_FAILED",
	ErrorCode_AI_DECLINED:              "AI_DECLINED",
	ErrorCode_AI_MALFORMED_OUTPUT:      "AI_MALFORMED_OUTPUT",
	ErrorCode_MUTATION_FAILED:          "MUTATION_FAILED",
	ErrorCode_MUTATION_PATH_REJECTED:   "MUTATION_PATH_REJECTED",
	ErrorCode_COMMIT_FAILED:            "COMMIT_FAILED",
	ErrorCode_NOTIFICATION_FAILED:      "NOTIFICATION_FAILED",
	ErrorCode_PRESENTATION_FAILED:      "PRESENTATION_FAILED",
	ErrorCode_DEADLETTER_NOT_FOUND:     "DEADLETTER_NOT_FOUND",
	ErrorCode_DEADLETTER_STORE_FAILED:  "DEADLETTER_STORE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
