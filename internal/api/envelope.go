package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version clients check for.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the shared envelope:
// {v, success, data} on success and {v, success, error, code, details} on failure.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case error:
		return response.Fail(statusToCode(statusFromString(status)), body.Error(), nil), nil
	}

	return response.OK(v), nil
}

func statusFromString(status string) int {
	n, err := strconv.Atoi(status)
	if err != nil {
		return 0
	}
	return n
}
