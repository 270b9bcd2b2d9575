package compliance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sleep-tracker/internal/compliance"
)

func TestNormalizeWorkerKey(t *testing.T) {
	tests := map[string]string{
		"Carlos Díaz":             "carlos_diaz",
		"  Juan   Pérez  ":        "juan_perez",
		"Luis Gómez-Ñáñez":        "luis_gomez_nanez",
		"__María__José__":         "maria_jose",
		"O'Brien, Seán (ops) #2":  "o_brien_sean_ops_2",
		"":                        "",
		"!!!":                     "",
		"ALREADY_normalized_key1": "already_normalized_key1",
	}

	for in, want := range tests {
		assert.Equal(t, want, compliance.NormalizeWorkerKey(in), "input %q", in)
	}
}
