package registry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is an in-memory SlugAvailability with a call counter.
type fakeIndex struct {
	taken  map[string]bool
	probes int
	err    error
}

func newFakeIndex(taken ...string) *fakeIndex {
	m := make(map[string]bool, len(taken))
	for _, slug := range taken {
		m[slug] = true
	}
	return &fakeIndex{taken: m}
}

func (f *fakeIndex) SlugInUse(slug string) (bool, error) {
	f.probes++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func newTestGenerator(index SlugAvailability) *SlugGenerator {
	return NewSlugGenerator(NewSlugValidator(DefaultSlugConfig()), index)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  Already   spaced  ":   "already-spaced",
		"Crème Brûlée!":           "creme-brulee",
		"C++ in 2024":            "c-in-2024",
		"snake_case stays":       "snake_case-stays",
		"---":                    "",
		"ALLCAPS":                "allcaps",
		"emoji 🎉 party":          "emoji-party",
	}
	for title, want := range cases {
		assert.Equal(t, want, Slugify(title), "title %q", title)
	}
}

func TestGenerateUniqueReturnsBaseWhenFree(t *testing.T) {
	g := newTestGenerator(newFakeIndex())

	slug, err := g.GenerateUnique("Hello World", "article")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", slug)
}

func TestGenerateUniqueProbesNumericSuffixes(t *testing.T) {
	g := newTestGenerator(newFakeIndex("hello-world", "hello-world-1", "hello-world-2"))

	slug, err := g.GenerateUnique("Hello World", "article")
	require.NoError(t, err)
	assert.Equal(t, "hello-world-3", slug)
}

func TestGenerateUniqueSkipsReservedWords(t *testing.T) {
	g := newTestGenerator(newFakeIndex())

	slug, err := g.GenerateUnique("Admin", "page")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", slug)
}

func TestGenerateUniquePrefixesShortTitles(t *testing.T) {
	g := newTestGenerator(newFakeIndex())

	slug, err := g.GenerateUnique("Hi", "card")
	require.NoError(t, err)
	assert.Equal(t, "card-hi", slug)

	slug, err = g.GenerateUnique("", "image")
	require.NoError(t, err)
	assert.Equal(t, "image", slug)
}

func TestGenerateUniqueTruncatesLongTitles(t *testing.T) {
	g := newTestGenerator(newFakeIndex())

	slug, err := g.GenerateUnique(strings.Repeat("verylong ", 20), "article")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slug), 50)
	assert.NotEqual(t, byte('-'), slug[len(slug)-1])
}

func TestGenerateUniqueSuffixedSlugStaysWithinMaxLength(t *testing.T) {
	long := strings.Repeat("a", 50)
	g := newTestGenerator(newFakeIndex(long))

	slug, err := g.GenerateUnique(long, "article")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slug), 50)
	assert.True(t, strings.HasSuffix(slug, "-1"))
}

func TestGenerateUniqueTerminatesUnderTotalSaturation(t *testing.T) {
	// Base and all 100 numeric probes taken: the generator must fall back
	// to a timestamp suffix after a bounded number of probes.
	index := newFakeIndex("hello-world")
	for i := 1; i <= 100; i++ {
		index.taken[fmt.Sprintf("hello-world-%d", i)] = true
	}
	g := newTestGenerator(index)

	slug, err := g.GenerateUnique("Hello World", "article")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "hello-world-"))
	assert.False(t, index.taken[slug])
	assert.LessOrEqual(t, index.probes, 101)
}

func TestGenerateUniquePropagatesStorageErrors(t *testing.T) {
	index := newFakeIndex()
	index.err = fmt.Errorf("connection reset")
	g := newTestGenerator(index)

	_, err := g.GenerateUnique("Hello World", "article")
	assert.Error(t, err)
}
