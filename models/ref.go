package models

import (
	"bytes"
	"encoding/json"
)

// Ref points at another record. The backend sends either the bare id or the
// populated document, depending on the endpoint.
type Ref struct {
	ID       string `json:"_id"`
	Name     string `json:"name,omitempty"`
	Code     string `json:"code,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

func RefTo(id string) *Ref {
	if id == "" {
		return nil
	}
	return &Ref{ID: id}
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if isJSONString(b) {
		return json.Unmarshal(b, &r.ID)
	}
	type alias Ref
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*r = Ref(a)
	return nil
}

// RefID is nil-safe.
func RefID(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func isJSONString(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}
