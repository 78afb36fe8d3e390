// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Address
	}{
		{
			name:   "street present",
			record: Record{Street: "Rua X", Number: "10", Legacy: "ignored"},
			want:   Structured{Street: "Rua X", Number: "10"},
		},
		{
			name:   "blank street falls back to legacy",
			record: Record{Street: "   ", City: "Recife", Legacy: "  Praça Y "},
			want:   Legacy{Text: "Praça Y"},
		},
		{
			name:   "nothing",
			record: Record{City: "Recife"},
			want:   Missing{},
		},
		{
			name:   "zero value",
			record: Record{},
			want:   Missing{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.record))
		})
	}
}

func TestResolveStructuredIgnoresLegacy(t *testing.T) {
	for _, legacy := range []string{"", "Praça Y", "  outra coisa  "} {
		got := ResolveRecord(&Record{Street: "Rua X", Number: "10", City: "Recife", State: "PE", Legacy: legacy})
		assert.Equal(t, "Rua X, 10, Recife, PE", got, "legacy %q", legacy)
	}
}

func TestResolveLegacyIsTrimmed(t *testing.T) {
	for _, legacy := range []string{"Praça Y", " Praça Y", "Praça Y\t", "\n Praça Y  "} {
		assert.Equal(t, "Praça Y", ResolveRecord(&Record{Legacy: legacy}))
	}
}

func TestResolveMissing(t *testing.T) {
	assert.Equal(t, "", ResolveRecord(nil))
	assert.Equal(t, "", ResolveRecord(&Record{}))
	assert.Equal(t, "", ResolveRecord(&Record{Legacy: "   "}))
	assert.Equal(t, "", Resolve(nil))
	assert.Equal(t, "", Resolve(Missing{}))
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name  string
		parts [6]string
		want  string
	}{
		{"full", [6]string{"Rua das Flores", "123", "Boa Vista", "Recife", "PE", "50050-000"}, "Rua das Flores, 123, Boa Vista, Recife, PE, CEP: 50050-000"},
		{"no street", [6]string{"", "45", "", "Olinda", "PE", ""}, "Nº 45, Olinda, PE"},
		{"blank parts skipped", [6]string{"Rua A", " ", "", " Recife ", "", ""}, "Rua A, Recife"},
		{"only cep", [6]string{"", "", "", "", "", "50000-000"}, "CEP: 50000-000"},
		{"empty", [6]string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.parts
			assert.Equal(t, tt.want, Compose(p[0], p[1], p[2], p[3], p[4], p[5]))
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	for in, want := range map[string]Endpoint{
		"origem": Origin, "Origin": Origin, " destino ": Destination, "DESTINATION": Destination,
	} {
		got, err := ParseEndpoint(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseEndpoint("meio")
	assert.Error(t, err)
}
