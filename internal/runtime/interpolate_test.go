package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		bag      map[string]any
		want     string
	}{
		{
			name:     "plain placeholder",
			template: "Hello, {{name}}!",
			bag:      map[string]any{"name": "Ada"},
			want:     "Hello, Ada!",
		},
		{
			name:     "unresolved renders empty",
			template: "Hello, {{missing}}!",
			bag:      map[string]any{},
			want:     "Hello, !",
		},
		{
			name:     "nil renders empty",
			template: "[{{value}}]",
			bag:      map[string]any{"value": nil},
			want:     "[]",
		},
		{
			name:     "numeric value",
			template: "count={{count}}",
			bag:      map[string]any{"count": int64(3)},
			want:     "count=3",
		},
		{
			name:     "basename filter",
			template: "{{file|basename}}",
			bag:      map[string]any{"file": "corpus/alice.txt"},
			want:     "corpus/alice",
		},
		{
			name:     "basename without extension",
			template: "{{file|basename}}",
			bag:      map[string]any{"file": "README"},
			want:     "README",
		},
		{
			name:     "dirname filter",
			template: "{{file|dirname}}",
			bag:      map[string]any{"file": "corpus/books/alice.txt"},
			want:     "corpus/books",
		},
		{
			name:     "dirname without separator",
			template: "{{file|dirname}}",
			bag:      map[string]any{"file": "alice.txt"},
			want:     "alice.txt",
		},
		{
			name:     "unknown filter falls back to bare value",
			template: "{{file|shout}}",
			bag:      map[string]any{"file": "x"},
			want:     "x",
		},
		{
			name:     "spaces inside braces",
			template: "{{ name | basename }}",
			bag:      map[string]any{"name": "a.b"},
			want:     "a",
		},
		{
			name:     "multiple placeholders",
			template: "{{a}}-{{b}}-{{a}}",
			bag:      map[string]any{"a": "x", "b": "y"},
			want:     "x-y-x",
		},
		{
			name:     "no placeholders",
			template: "static text",
			bag:      nil,
			want:     "static text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.template, tt.bag))
		})
	}
}
