package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSuperseded         = errors.New("response superseded by a newer request")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrPublishedIssue     = errors.New("cannot delete a published issue")
	ErrDraftNotFound      = errors.New("draft not found")
	ErrNothingToSubmit    = errors.New("no article to register files against")
	ErrSessionNotFound    = errors.New("submission session not found")
)

// OpError is the failure result of a store operation. Message is the fixed
// user-facing text for Op; Err keeps the transport cause for logs.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// UploadError reports a failed transfer to the object store.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ValidationError carries per-field messages collected before any request.
type ValidationError struct {
	Fields *FieldErrors
}

func (e *ValidationError) Error() string {
	key := e.Fields.First()
	return fmt.Sprintf("validation failed: %s: %s", key, e.Fields.Get(key))
}

// FieldErrors is an insertion-ordered map of field key to message.
type FieldErrors struct {
	keys []string
	msgs map[string]string
}

func NewFieldErrors() *FieldErrors {
	return &FieldErrors{msgs: map[string]string{}}
}

func (f *FieldErrors) Set(key, msg string) {
	if f.msgs == nil {
		f.msgs = map[string]string{}
	}
	if _, ok := f.msgs[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.msgs[key] = msg
}

func (f *FieldErrors) Get(key string) string {
	if f == nil {
		return ""
	}
	return f.msgs[key]
}

func (f *FieldErrors) Has(key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.msgs[key]
	return ok
}

func (f *FieldErrors) Delete(key string) {
	if !f.Has(key) {
		return
	}
	delete(f.msgs, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

func (f *FieldErrors) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// First returns the earliest inserted key, or "".
func (f *FieldErrors) First() string {
	if f.Len() == 0 {
		return ""
	}
	return f.keys[0]
}

func (f *FieldErrors) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

func (f *FieldErrors) Clone() *FieldErrors {
	out := NewFieldErrors()
	for _, k := range f.Keys() {
		out.Set(k, f.msgs[k])
	}
	return out
}

// MarshalJSON writes the keys in insertion order.
func (f *FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.msgs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
