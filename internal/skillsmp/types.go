package skillsmp

import "encoding/json"

// Error codes produced on the client side. Codes returned by the API are
// passed through untouched.
const (
	CodeFetchError = "FETCH_ERROR"
	CodeNoAPIKey   = "NO_API_KEY"
)

// APIError is the `error` object of the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Pagination describes the page a search payload belongs to.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SkillRecord is one marketplace skill as returned by the search endpoints.
type SkillRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Author      string `json:"author"`
	Stars       int    `json:"stars"`
	Description string `json:"description,omitempty"`
	GitHubURL   string `json:"githubUrl,omitempty"`
	SkillURL    string `json:"skillUrl,omitempty"`
}

// DisplayName returns the skill name, falling back to its id.
func (s SkillRecord) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// SearchPayload is the `data` object of a successful search.
type SearchPayload struct {
	Skills     []SkillRecord `json:"skills"`
	Pagination Pagination    `json:"pagination"`
}

// Result is the outcome of one API call: either Success with Data, or a
// failure with Err. Exactly one of Data and Err is set.
//
// When the result came from the server, the original body is retained and
// MarshalJSON reproduces it verbatim, so remote error objects are never
// re-wrapped.
type Result struct {
	Success bool
	Data    *SearchPayload
	Err     *APIError

	raw json.RawMessage
}

// Failure builds a client-side failure result.
func Failure(code, message string) Result {
	return Result{Err: &APIError{Code: code, Message: message}}
}

// Raw returns the response body the result was decoded from, or nil for
// client-side failures.
func (r Result) Raw() json.RawMessage {
	return r.raw
}

// ErrorMessage returns the failure message, or "" for a successful result.
func (r Result) ErrorMessage() string {
	if r.Success || r.Err == nil {
		return ""
	}
	return r.Err.Message
}

type envelope struct {
	Success bool           `json:"success"`
	Data    *SearchPayload `json:"data,omitempty"`
	Error   *APIError      `json:"error,omitempty"`
}

// MarshalJSON renders the result in the API's envelope shape.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	env := envelope{Success: r.Success}
	if r.Success {
		env.Data = r.Data
	} else {
		env.Error = r.Err
	}
	return json.Marshal(env)
}

// decodeResult parses a response body. Only a body that is not JSON at all
// is an error; everything else is decoded as far as its shape allows and the
// body itself is kept for pass-through.
func decodeResult(body []byte) (Result, error) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return Result{}, err
	}
	res := Result{raw: json.RawMessage(body)}

	var env struct {
		Success json.RawMessage `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
	}
	if _, ok := probe.(map[string]any); ok {
		_ = json.Unmarshal(body, &env)
	}
	_ = json.Unmarshal(env.Success, &res.Success)

	if res.Success {
		res.Data = &SearchPayload{}
		decodeLenient(env.Data, res.Data)
		return res, nil
	}
	res.Err = &APIError{}
	decodeLenient(env.Error, res.Err)
	return res, nil
}

// decodeLenient fills v from raw. json.Unmarshal keeps every field that
// decoded cleanly when it reports an *UnmarshalTypeError, which is what we
// want for loosely shaped payloads, so the error is dropped.
func decodeLenient(raw json.RawMessage, v any) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	_ = json.Unmarshal(raw, v)
}
