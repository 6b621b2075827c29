package utils

// ResponseData is the JSON envelope used by every REST handler.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on a non-nil error so the recovery middleware can map
// it to a structured response. Handlers use it to keep the happy path flat.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
