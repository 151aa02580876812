package depot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitMessage(t *testing.T) {
	a := entry("https://example.com/a.zip", "a", "1.0.0")
	aNext := entry("https://example.com/a.zip", "a", "1.0.1")
	b := entry("https://example.com/b.zip", "b", "2.0.0")

	testCases := []struct {
		name     string
		previous Depot
		next     Depot
		expected string
	}{
		{name: "nothing", previous: Depot{}, next: Depot{}, expected: "Update one or more version(s)"},
		{name: "single addition", previous: Depot{}, next: Depot{a}, expected: "Release version 1.0.0"},
		{name: "single addition next to unchanged", previous: Depot{b}, next: Depot{b, a}, expected: "Release version 1.0.0"},
		{name: "two additions", previous: Depot{}, next: Depot{a, b}, expected: "Update one or more version(s)"},
		{name: "pure removal", previous: Depot{a}, next: Depot{}, expected: "Update one or more version(s)"},
		{name: "content change", previous: Depot{a}, next: Depot{aNext}, expected: "Update one or more version(s)"},
		{name: "addition with removal", previous: Depot{a}, next: Depot{b}, expected: "Update one or more version(s)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Compare(tc.previous, tc.next).CommitMessage())
		})
	}
}

func TestCompareClassifies(t *testing.T) {
	a := entry("https://example.com/a.zip", "a", "1.0.0")
	aNext := entry("https://example.com/a.zip", "a", "1.0.1")
	b := entry("https://example.com/b.zip", "b", "2.0.0")
	c := entry("https://example.com/c.zip", "c", "3.0.0")

	diff := Compare(Depot{a, b}, Depot{c, aNext})

	assert.Equal(t, []BaseTemplate{c}, diff.Added)
	assert.Equal(t, []BaseTemplate{aNext}, diff.Updated)
	assert.Equal(t, []BaseTemplate{b}, diff.Removed)
	assert.False(t, diff.Empty())
}

func TestCompareSameLengthDifferentContent(t *testing.T) {
	a := entry("https://example.com/a.zip", "a", "1.0.0")
	b := entry("https://example.com/b.zip", "b", "2.0.0")

	diff := Compare(Depot{a}, Depot{b})

	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Removed, 1)
	assert.Empty(t, diff.Updated)
}

func TestCompareUnchanged(t *testing.T) {
	a := entry("https://example.com/a.zip", "a", "1.0.0")
	withNilList := a
	withNilList.SupportedKernels = []interface{}(nil)
	withEmptyList := a
	withEmptyList.SupportedKernels = []interface{}{}
	newConstraint := a
	newConstraint.SupportedKernels = "^3.9.0"

	assert.True(t, Compare(Depot{a}, Depot{a}).Empty())
	assert.True(t, Compare(Depot{withEmptyList}, Depot{withNilList}).Empty())
	assert.Equal(t, []BaseTemplate{newConstraint}, Compare(Depot{a}, Depot{newConstraint}).Updated)
}
