package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDtype(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Dtype
		ok   bool
	}{
		{"canonical fp32", "fp32", DtypeFP32, true},
		{"canonical i64", "i64", DtypeI64, true},
		{"alias f16", "f16", DtypeFP16, true},
		{"alias f32", "f32", DtypeFP32, true},
		{"alias bool", "bool", DtypeI1, true},
		{"unknown", "complex128", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CanonicalDtype(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
