package fieldopt

import "encoding/json"

// jsonMarshalMerge marshals payload to a JSON object and merges in a "type"
// key, producing the flat {"type": ..., ...fields} shape spec §4.9's events
// use.
func jsonMarshalMerge(typ string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	typJSON, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}
	m["type"] = typJSON
	return json.Marshal(m)
}
