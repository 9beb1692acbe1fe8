// Package dto defines the JSON request and response shapes for the v1 API.
package dto

// AskRequest is the body of POST /ask. K distinguishes absent from an
// explicit zero: only a missing field falls back to the default.
type AskRequest struct {
	Question string `json:"question"`
	K        *int   `json:"k"`
}

// Source is one retrieved passage backing an answer.
type Source struct {
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata"`
	Distance float64        `json:"distance"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

// BuildIndexResponse is the body returned by POST /ask/build-index.
type BuildIndexResponse struct {
	Detail    string `json:"detail"`
	Documents int    `json:"documents"`
}
