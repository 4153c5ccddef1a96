package reconcile

import (
	"errors"
	"testing"
)

func TestObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr error
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  map[string]interface{}{"a": float64(1)},
		},
		{
			name:  "fenced with language tag and prose",
			input: "Sure! ```json\n{\"a\":1,\"b\":{\"c\":2}}\n```\nHope that helps!",
			want: map[string]interface{}{
				"a": float64(1),
				"b": map[string]interface{}{"c": float64(2)},
			},
		},
		{
			name:  "fenced without language tag",
			input: "```\n{\"key\": \"value\"}\n```",
			want:  map[string]interface{}{"key": "value"},
		},
		{
			name:  "prose before and after",
			input: "Here is your section:\n{\"title\": \"Habits\"}\nLet me know if you need more.",
			want:  map[string]interface{}{"title": "Habits"},
		},
		{
			name:  "nested objects stop at first balanced object",
			input: `{"outer": {"inner": true}} trailing {"second": 1}`,
			want:  map[string]interface{}{"outer": map[string]interface{}{"inner": true}},
		},
		{
			name:    "no braces at all",
			input:   "no json here",
			wantErr: ErrNoObject,
		},
		{
			name:    "truncated object",
			input:   `{"a": 1`,
			wantErr: ErrUnbalancedBraces,
		},
		{
			name:    "truncated nested object",
			input:   "```json\n{\"a\": {\"b\": 2}",
			wantErr: ErrUnbalancedBraces,
		},
		{
			name:    "balanced but invalid json",
			input:   `{"a": 1,}`,
			wantErr: ErrInvalidJSON,
		},
		{
			name:  "empty object",
			input: "{}",
			want:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Object(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys, want %d", len(got), len(tt.want))
			}
			for k := range tt.want {
				if _, ok := got[k]; !ok {
					t.Errorf("missing key %q", k)
				}
			}
		})
	}
}

func TestObjectDistinctErrors(t *testing.T) {
	// "No object" and "unbalanced" must be distinguishable by callers.
	_, noObjErr := Object("plain text")
	_, unbalancedErr := Object("{\"a\": 1")

	if errors.Is(noObjErr, ErrUnbalancedBraces) {
		t.Error("no-brace input must not report unbalanced braces")
	}
	if errors.Is(unbalancedErr, ErrNoObject) {
		t.Error("truncated input must not report missing object")
	}
}
