package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/bilgisen/repurpose/internal/logger"
)

// jsonFence matches a ```json fenced block; the first group is the enclosed text.
var jsonFence = regexp.MustCompile("(?s)```json\\n?(.*?)\\n?```")

var errEmptyCandidate = errors.New("empty response")

// ExtractJSON returns the candidate JSON text of a model response: the body of the
// first ```json fence when present, otherwise the whole response.
func ExtractJSON(raw string) string {
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Normalize extracts and parses the JSON payload of a model response. The payload is
// returned as-is: no schema is enforced and no retry is attempted.
func Normalize(raw string) (json.RawMessage, error) {
	candidate := ExtractJSON(raw)

	var err error
	switch {
	case candidate == "":
		err = errEmptyCandidate
	case !json.Valid([]byte(candidate)):
		// Unmarshal again only to get a descriptive syntax error.
		var v any
		if err = json.Unmarshal([]byte(candidate), &v); err == nil {
			err = errors.New("invalid JSON")
		}
	}
	if err != nil {
		logger.Get().Warn().
			Int("raw_size", len(raw)).
			Int("candidate_size", len(candidate)).
			Err(err).
			Msg("Model response is not valid JSON")
		return nil, &ParseError{Size: len(candidate), Err: err}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(candidate)); err != nil {
		return nil, &ParseError{Size: len(candidate), Err: err}
	}
	return json.RawMessage(buf.Bytes()), nil
}
