package alertfanout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

// Payload is the default alert body: the pre/post content digest for one
// path. Field order is the marshaled key order — path, old, new — and is
// part of the contract (spec.md §4.5 step 1).
type Payload struct {
	Path string `json:"path"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

// renderPayload builds the bytes sent to every sink. When tmplSrc is
// non-empty it is parsed and executed with the variables path/old/new;
// any parse or execution error falls back to the default JSON payload
// and is returned alongside it so the caller can log it (the fallback
// itself is never an error).
func renderPayload(tmplSrc string, p Payload) ([]byte, error) {
	if tmplSrc == "" {
		return defaultPayload(p)
	}

	tmpl, err := template.New("alert").Parse(tmplSrc)
	if err != nil {
		body, derr := defaultPayload(p)
		if derr != nil {
			return nil, derr
		}
		return body, fmt.Errorf("parse payload template: %w", err)
	}

	data := map[string]string{"path": p.Path, "old": p.Old, "new": p.New}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		body, derr := defaultPayload(p)
		if derr != nil {
			return nil, derr
		}
		return body, fmt.Errorf("render payload template: %w", err)
	}
	return buf.Bytes(), nil
}

func defaultPayload(p Payload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal default payload: %w", err)
	}
	return body, nil
}
