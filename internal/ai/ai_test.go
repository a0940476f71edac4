package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smritirangarajan/spenderella/internal/ai"
)

func TestCleanJSON(t *testing.T) {
	type testCase struct {
		name string
		raw  string
		want string
	}

	tests := []testCase{
		{name: "Plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "Fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "BareFence", raw: "```\n[1,2]\n```\n", want: `[1,2]`},
		{name: "Prose", raw: "Here you go: {\"a\":{\"b\":2}} hope that helps", want: `{"a":{"b":2}}`},
		{name: "ArrayWithObjects", raw: `  [{"a":1},{"b":2}]  `, want: `[{"a":1},{"b":2}]`},
		{name: "NoJSON", raw: "nothing here", want: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ai.CleanJSON(tt.raw))
		})
	}
}
