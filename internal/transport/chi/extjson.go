package chi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// decodeDocument parses a relaxed Extended JSON document into an ordered
// bson.D. A missing or null document decodes to an empty one.
func decodeDocument(raw json.RawMessage) (bson.D, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return bson.D{}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("must be a JSON object")
	}

	var d bson.D
	if err := bson.UnmarshalExtJSON(trimmed, false, &d); err != nil {
		return nil, fmt.Errorf("invalid extended JSON: %w", err)
	}
	if d == nil {
		d = bson.D{}
	}
	return d, nil
}
