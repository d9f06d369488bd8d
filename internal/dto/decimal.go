package dto

import (
	"bytes"
	"encoding/json"
)

// DecimalInput keeps a JSON number or string literal as its exact text so
// prices never pass through float64. null and absent both decode to "".
type DecimalInput string

func (d *DecimalInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DecimalInput(s)
		return nil
	}

	*d = DecimalInput(data)
	return nil
}

func (d DecimalInput) String() string {
	return string(d)
}
