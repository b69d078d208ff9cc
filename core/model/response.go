package model

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// FailureMessage is the fixed message attached to every error response.
	FailureMessage = "Prediction failed"
)

// Response is the envelope returned to the HTTP boundary. Success responses
// embed the processed result; error responses carry Error and Message only.
type Response struct {
	Status string `json:"status"`
	*ProcessedResult
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success wraps a processed result.
func Success(res ProcessedResult) Response {
	if res.RulesApplied == nil {
		res.RulesApplied = []string{}
	}
	return Response{Status: StatusSuccess, ProcessedResult: &res}
}

// Failure builds the error envelope for err.
func Failure(err error) Response {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response{Status: StatusError, Error: msg, Message: FailureMessage}
}

// OK reports whether the response carries a result.
func (r Response) OK() bool { return r.Status == StatusSuccess && r.ProcessedResult != nil }
