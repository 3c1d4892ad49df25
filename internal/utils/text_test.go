package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":             "hello-world",
		"  Go & Gin: A Primer!  ": "go-gin-a-primer",
		"Crème Brûlée 101":        "creme-brulee-101",
		"---":                     "",
		"already-a-slug":          "already-a-slug",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.True(t, IsSlug(Slugify("Some Product Name 2")))
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("abc ", 100))), 180)
}

func TestSKU(t *testing.T) {
	assert.Equal(t, "TSHIRT-RED-XL", NormalizeSKU(" tshirt red_xl "))
	assert.True(t, IsSKU("TSHIRT-RED-XL"))
	assert.False(t, IsSKU("tshirt"))
	assert.False(t, IsSKU("A--B"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Hello world", SanitizeText("<b>Hello</b> world<script>alert(1)</script>"))
	assert.Equal(t, "line one\nline two", SanitizeText("line one\nline two\x00"))
	assert.Equal(t, "a b c", SanitizeLine(" a \n\t b   c "))
	assert.Equal(t, "body", SanitizeText("<style>p{color:red}</style>body"))
}

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "50!% off!_now", SanitizeSearch("  50% off_now "))
	assert.Equal(t, "wow!!", SanitizeSearch("wow!"))
	assert.Len(t, []rune(SanitizeSearch(strings.Repeat("x", 500))), MaxSearchLength)
	assert.Equal(t, "%shoe%", LikePattern("<i>shoe</i>"))
}

func TestLikeClause(t *testing.T) {
	clause, args := LikeClause("mug", "name", "description")
	assert.Equal(t, "(name LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!')", clause)
	assert.Equal(t, []any{"%mug%", "%mug%"}, args)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 100.0, Round2(100))
}
