package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPosting(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2025, 1, 1234, "2025-01-1234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPosting(tt.year, tt.month, tt.seq))
	}
}

func TestFormatShare(t *testing.T) {
	assert.Equal(t, "2025-01-001a", FormatShare("2025-01-001", 0))
	assert.Equal(t, "2025-01-001c", FormatShare("2025-01-001", 2))
	assert.Equal(t, "2025-01-001z", FormatShare("2025-01-001", MaxShares-1))
}

func TestParsePosting(t *testing.T) {
	tests := []struct {
		input               string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"2025-01-001", 2025, 1, 1},
		{"2025-12-099", 2025, 12, 99},
		{"2025-01-001a", 2025, 1, 1},
		{"2025-01-017b", 2025, 1, 17},
	}
	for _, tt := range tests {
		year, month, seq, err := ParsePosting(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParsePosting_Errors(t *testing.T) {
	for _, input := range []string{"", "not-valid", "2025-01", "xxxx-01-001", "2025-13-001", "2025-01-x"} {
		_, _, _, err := ParsePosting(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestPosting(t *testing.T) {
	assert.Equal(t, "2025-01-001", Posting("2025-01-001a"))
	assert.Equal(t, "2025-01-001", Posting("2025-01-001"))
	assert.Equal(t, "", Posting(""))
}

func TestNextSeq(t *testing.T) {
	ids := []string{"2025-01-001a", "2025-01-001b", "2025-01-004a", "2025-02-009a", "legacy-7"}

	assert.Equal(t, 5, NextSeq(ids, 2025, 1))
	assert.Equal(t, 10, NextSeq(ids, 2025, 2))
	assert.Equal(t, 1, NextSeq(ids, 2025, 3))
	assert.Equal(t, 1, NextSeq(nil, 2025, 1))
}
