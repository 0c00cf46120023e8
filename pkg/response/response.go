package response

// APIResponseCode is carried in the envelope; HTTP status stays 200.
type APIResponseCode int

const (
	APIResponseCodeOK                 APIResponseCode = 0
	APIResponseCodeBadRequest         APIResponseCode = 40000
	APIResponseCodeUnauthenticated    APIResponseCode = 40100
	APIResponseCodeForbidden          APIResponseCode = 40300
	APIResponseCodeConflict           APIResponseCode = 40900
	APIResponseCodeError              APIResponseCode = 50000
	APIResponseCodeServiceUnavailable APIResponseCode = 50300
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                 "ok",
	APIResponseCodeBadRequest:         "bad request",
	APIResponseCodeUnauthenticated:    "unauthenticated",
	APIResponseCodeForbidden:          "forbidden",
	APIResponseCodeConflict:           "conflict",
	APIResponseCodeError:              "unexpected error",
	APIResponseCodeServiceUnavailable: "service unavailable",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT / ErrorMsgT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with the default message for code.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// ErrorMsgT returns an error response whose message is shown to the user as-is.
func ErrorMsgT[T any](code APIResponseCode, msg string, data T) *APIResponse[T] {
	if msg == "" {
		msg = codeToMsg[code]
	}
	return &APIResponse[T]{Code: code, Message: msg, Data: data}
}
