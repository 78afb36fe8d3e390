// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerAsciiFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"João Conceição", "joao conceicao"},
		{"Praça São Salvador", "praca sao salvador"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, LowerASCIIFolding(tc.input))
		})
	}
}

func TestContainsFolded(t *testing.T) {
	assert.True(t, ContainsFolded("joao", "Maria", "João Silva"))
	assert.True(t, ContainsFolded("sao", "Escola São Bento"))
	assert.False(t, ContainsFolded("pedro", "Maria", "João"))
	assert.False(t, ContainsFolded("", "anything"))
	assert.False(t, ContainsFolded("x"))
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "b", FirstNonBlank("", "  ", " b ", "c"))
	assert.Equal(t, "", FirstNonBlank(" ", ""))
	assert.Equal(t, "", FirstNonBlank())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcd", 3))
	assert.Equal(t, "Jo…", Truncate("João", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}
