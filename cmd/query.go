package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// query evaluates a jsonpath expression against the JSON form of v.
func query(path string, v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var jobj any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, err
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", path, err)
	}
	// wildcard queries return a list, a single match is unwrapped.
	if list, ok := jval.([]any); ok && len(list) == 1 {
		return list[0], nil
	}
	return jval, nil
}
