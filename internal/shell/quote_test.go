package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSafeTokensAreVerbatim(t *testing.T) {
	tokens := []string{
		"python",
		"Login.py",
		"CSVDATA/JV_L",
		`C:\data\out`,
		"user@example.com",
		"50%",
		"a+b=c",
		"JV_F_L:123",
		"1,2,3",
		"-",
	}
	for _, token := range tokens {
		assert.Equal(t, token, Quote(token), token)
	}
}

func TestQuoteFlagsAreVerbatim(t *testing.T) {
	tokens := []string{
		"--verbose",
		"--name=it's here",
		"-x $HOME",
		`--"odd"`,
	}
	for _, token := range tokens {
		assert.Equal(t, token, Quote(token), token)
	}
}

func TestQuoteUnsafeTokens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `it's "quoted"`, want: `"it's \"quoted\""`},
		{in: "two words", want: `"two words"`},
		{in: "$HOME", want: `"\$HOME"`},
		{in: "a`b`", want: "\"a\\`b\\`\""},
		{in: `back\slash here`, want: `"back\\slash here"`},
		{in: "Möbel", want: `"Möbel"`},
		{in: "line\nbreak", want: "\"line\nbreak\""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestQuoteEmpty(t *testing.T) {
	assert.Equal(t, "", Quote(""))
	assert.False(t, IsSafe(""))
}

func TestJoin(t *testing.T) {
	got := Join("python", "Login.py", "--account", "bob", "--verbose")
	require.Equal(t, "python Login.py --account bob --verbose", got)
}

func TestJoinDropsEmptyAndNil(t *testing.T) {
	var missing *int
	limit := 5
	got := Join("python", nil, "", "export.py", missing, "--limit", &limit, "--name", "Haus Nord", 7)
	assert.Equal(t, `python export.py --limit 5 --name "Haus Nord" 7`, got)
}

func TestJoinNoTokens(t *testing.T) {
	assert.Equal(t, "", Join())
	assert.Equal(t, "", Join(nil, ""))
}

func TestJoinStrings(t *testing.T) {
	assert.Equal(t, `python -c "print(1)"`, JoinStrings([]string{"python", "-c", "print(1)"}))
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, `"JV_F_L"`, Literal("JV_F_L"))
	assert.Equal(t, `"say \"hi\""`, Literal(`say "hi"`))
	assert.Equal(t, `"a\\b"`, Literal(`a\b`))
	assert.Equal(t, `"$x"`, Literal("$x"))
	assert.Equal(t, `""`, Literal(""))
}
