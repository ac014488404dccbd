// Package id formats posting identifiers for analytic lines. A posting
// splits one move line across analytic roots; its id looks like
// "2025-01-007" and each share appends a letter: "2025-01-007a".
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxShares is the number of share suffixes available per posting.
const MaxShares = 26

// FormatPosting returns a posting ID like "2025-01-001".
func FormatPosting(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatShare returns a share ID like "2025-01-001a" (share 0='a', 1='b', etc.).
func FormatShare(postingID string, n int) string {
	return postingID + string(rune('a'+n))
}

// ParsePosting parses "2025-01-001" or a share ID into year, month, seq.
func ParsePosting(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(Posting(id), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid posting ID format: %q", id)
	}

	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in posting ID %q: %w", id, err)
	}
	if month, err = strconv.Atoi(parts[1]); err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in posting ID %q", id)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in posting ID %q: %w", id, err)
	}
	return year, month, seq, nil
}

// Posting strips the share suffix from a share ID.
// "2025-01-001a" -> "2025-01-001"
func Posting(shareID string) string {
	return strings.TrimRight(shareID, "abcdefghijklmnopqrstuvwxyz")
}

// NextSeq returns the sequence following the highest posting of year/month
// among ids. IDs that do not parse are ignored.
func NextSeq(ids []string, year, month int) int {
	maxSeq := 0
	for _, s := range ids {
		y, m, seq, err := ParsePosting(s)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
