// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	name?:  string
	count?: int & >=1
}
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	t.Run("valid data decodes", func(t *testing.T) {
		t.Parallel()

		got, err := DecodeMap([]byte(testSchema), []byte(`name: "x"`), "#Config", "config.cue")
		if err != nil {
			t.Fatalf("DecodeMap() error: %v", err)
		}
		if got["name"] != "x" {
			t.Errorf("name = %v, want x", got["name"])
		}
	})

	t.Run("schema violation reports field path", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeMap([]byte(testSchema), []byte(`count: 0`), "#Config", "config.cue")
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name the field, got: %v", err)
		}
	})

	t.Run("syntax error names the file", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeMap([]byte(testSchema), []byte(`name: `), "#Config", "broken.cue")
		if err == nil || !strings.Contains(err.Error(), "broken.cue") {
			t.Errorf("expected error naming broken.cue, got: %v", err)
		}
	})
}
