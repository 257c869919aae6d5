package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
)

// Document is a free-form JSON object, like metadata of files.
//
// A Document is always an object (or empty). It is validated when it enters the system,
// by ParseDocument.
type Document map[string]any

// ParseDocument parses raw JSON as Document.
//
// Empty input and JSON null yield an empty Document.
// Other non-object JSON values are rejected.
func ParseDocument(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: document should be a JSON object", domerr.ErrInvalidArgument)
	}
	doc := Document{}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domerr.ErrInvalidArgument, err)
	}
	return doc, nil
}

func (d Document) JSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(d))
}
