package alertfanout

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderPayloadDefaultWhenNoTemplate(t *testing.T) {
	p := Payload{Path: "/tmp/t/a", Old: "aaa", New: "bbb"}

	body, err := renderPayload("", p)
	if err != nil {
		t.Fatalf("renderPayload() error = %v", err)
	}

	want := `{"path":"/tmp/t/a","old":"aaa","new":"bbb"}`
	if string(body) != want {
		t.Errorf("renderPayload() = %s, want %s", body, want)
	}
}

func TestRenderPayloadTemplateSuccess(t *testing.T) {
	p := Payload{Path: "/tmp/t/a", Old: "aaa", New: "bbb"}

	body, err := renderPayload(`path={{.path}} old={{.old}} new={{.new}}`, p)
	if err != nil {
		t.Fatalf("renderPayload() error = %v", err)
	}

	want := "path=/tmp/t/a old=aaa new=bbb"
	if string(body) != want {
		t.Errorf("renderPayload() = %s, want %s", body, want)
	}
}

func TestRenderPayloadParseFailureFallsBackToDefault(t *testing.T) {
	p := Payload{Path: "/tmp/t/a", Old: "aaa", New: "bbb"}

	body, err := renderPayload(`{{.path`, p)
	if err == nil {
		t.Fatal("expected a parse error to be returned alongside the fallback body")
	}
	if !strings.Contains(err.Error(), "parse payload template") {
		t.Errorf("expected parse error, got %v", err)
	}

	var got Payload
	if jerr := json.Unmarshal(body, &got); jerr != nil {
		t.Fatalf("fallback body is not valid JSON: %v", jerr)
	}
	if got != p {
		t.Errorf("fallback body = %+v, want %+v", got, p)
	}
}

func TestRenderPayloadExecuteFailureFallsBackToDefault(t *testing.T) {
	p := Payload{Path: "/tmp/t/a", Old: "aaa", New: "bbb"}

	// .path is a string in the data map; indexing a field on it is an
	// execution-time error, not a parse-time one.
	body, err := renderPayload(`{{.path.NoSuchField}}`, p)
	if err == nil {
		t.Fatal("expected an execution error to be returned alongside the fallback body")
	}
	if !strings.Contains(err.Error(), "render payload template") {
		t.Errorf("expected render error, got %v", err)
	}

	var got Payload
	if jerr := json.Unmarshal(body, &got); jerr != nil {
		t.Fatalf("fallback body is not valid JSON: %v", jerr)
	}
	if got != p {
		t.Errorf("fallback body = %+v, want %+v", got, p)
	}
}
