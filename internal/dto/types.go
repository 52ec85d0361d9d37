package dto

import (
	"encoding/json"
	"strconv"
)

// FlexID accepts either a JSON string or a JSON number. Browser-side callers
// send numeric tab ids; everything else sends strings.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexID) String() string {
	return string(f)
}

// Int returns the numeric form when the id is numeric, else 0.
func (f FlexID) Int() int64 {
	v, _ := strconv.ParseInt(string(f), 10, 64)
	return v
}
