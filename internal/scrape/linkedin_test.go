package scrape

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
)

func TestGuessLinkedInURL(t *testing.T) {
	assert.Equal(t, "https://www.linkedin.com/company/acme-widgets",
		GuessLinkedInURL("Acme Widgets"))
	assert.Equal(t, "https://www.linkedin.com/company/smith-and-sons",
		GuessLinkedInURL("Smith & Sons"))
	assert.Equal(t, "https://www.linkedin.com/company/acme",
		GuessLinkedInURL("Acme LLC"))
	assert.Equal(t, "https://www.linkedin.com/company/beta-labs",
		GuessLinkedInURL("  Beta Labs Inc  "))
}

func TestIsLoginWall(t *testing.T) {
	assert.True(t, isLoginWall("short"))
	assert.True(t, isLoginWall(pad("<html>Sign in to continue</html>")))
	assert.True(t, isLoginWall(pad("<html>authwall redirect</html>")))
	assert.False(t, isLoginWall(pad("<html>Acme Widgets · Manufacturing · 51-200 employees</html>")))
}

func TestPatternGuessSource_AlwaysGuesses(t *testing.T) {
	src := NewPatternGuessSource()
	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme Widgets"})

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, fusion.SourcePatternGuess, outcome.Source)
	assert.Equal(t, "https://www.linkedin.com/company/acme-widgets", outcome.LinkedInURL)

	_, err = src.Gather(context.Background(), model.Company{})
	assert.Error(t, err, "a nameless company cannot be guessed")
}

func TestPublicPageSource_LoginWallIsNotFound(t *testing.T) {
	src := NewPublicPageSource(stubFetcher{body: pad("<html>Sign in to view this page</html>")})
	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.False(t, outcome.Found, "an auth wall yields no signal, never a guess")
}

func TestPublicPageSource_NameMismatchIsNotFound(t *testing.T) {
	src := NewPublicPageSource(stubFetcher{body: pad("<html>Completely Different Corp · Retail</html>")})
	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme"})

	require.NoError(t, err)
	assert.False(t, outcome.Found)
}

func TestPublicPageSource_VerifiedMatch(t *testing.T) {
	src := NewPublicPageSource(stubFetcher{body: pad("<html>Acme Widgets · Manufacturing · 51-200 employees</html>")})
	outcome, err := src.Gather(context.Background(), model.Company{Name: "Acme Widgets"})

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "https://www.linkedin.com/company/acme-widgets", outcome.LinkedInURL)
}

// stubFetcher returns a fixed body for any URL.
type stubFetcher struct {
	body   string
	status int
}

func (s stubFetcher) Get(_ context.Context, _ string, _ map[string]string) ([]byte, int, error) {
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return []byte(s.body), status, nil
}
