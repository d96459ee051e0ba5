package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/expo-enrich/internal/extract"
	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
)

// GuessLinkedInURL constructs a LinkedIn company page URL from the company
// name using LinkedIn's slug conventions.
func GuessLinkedInURL(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, "&", "and")
	slug = strings.Join(strings.Fields(slug), "-")
	for _, suffix := range []string{"-llc", "-inc", "-corp", "-ltd", "-co", "-gmbh"} {
		slug = strings.TrimSuffix(slug, suffix)
	}
	slug = strings.Trim(slug, "-.")
	return fmt.Sprintf("https://www.linkedin.com/company/%s", slug)
}

// isLoginWall detects a LinkedIn auth wall served in place of content.
func isLoginWall(content string) bool {
	if len(content) < 100 {
		return true
	}
	lower := strings.ToLower(content)
	for _, indicator := range []string{
		"sign in",
		"join now",
		"authwall",
		"login_required",
		"sign up to view",
	} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// PublicPageSource verifies a slug-guessed LinkedIn company page by
// fetching it and checking the content actually names the company. A
// login wall means the page cannot be verified and the tier reports no
// signal rather than guessing.
type PublicPageSource struct {
	fetcher Fetcher
}

// NewPublicPageSource creates the LinkedIn public-page tier.
func NewPublicPageSource(f Fetcher) *PublicPageSource {
	return &PublicPageSource{fetcher: f}
}

func (s *PublicPageSource) Name() string { return fusion.SourcePublicPage }

// Gather fetches the guessed public page and confirms it belongs to the
// company.
func (s *PublicPageSource) Gather(ctx context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Name == "" {
		return nil, eris.New("linkedin_public: company has no name")
	}

	guess := GuessLinkedInURL(company.Name)
	body, status, err := s.fetcher.Get(ctx, guess, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin_public: fetch")
	}
	if status >= 400 {
		return nil, eris.Errorf("linkedin_public: status %d", status)
	}

	content := string(body)
	if isLoginWall(content) {
		return &model.SourceOutcome{Source: fusion.SourcePublicPage}, nil
	}
	if !strings.Contains(strings.ToLower(content), strings.ToLower(company.Name)) {
		return &model.SourceOutcome{Source: fusion.SourcePublicPage}, nil
	}

	return &model.SourceOutcome{
		Source:      fusion.SourcePublicPage,
		Found:       true,
		LinkedInURL: extract.NormalizeLinkedInURL(guess),
	}, nil
}

// PatternGuessSource emits the slug-guessed URL without any network
// confirmation. It is the lowest-trust tier and runs only when every
// other discovery tier came up empty.
type PatternGuessSource struct{}

// NewPatternGuessSource creates the slug-guess tier.
func NewPatternGuessSource() *PatternGuessSource {
	return &PatternGuessSource{}
}

func (s *PatternGuessSource) Name() string { return fusion.SourcePatternGuess }

// Gather returns the guessed URL.
func (s *PatternGuessSource) Gather(_ context.Context, company model.Company) (*model.SourceOutcome, error) {
	if company.Name == "" {
		return nil, eris.New("pattern_guess: company has no name")
	}
	return &model.SourceOutcome{
		Source:      fusion.SourcePatternGuess,
		Found:       true,
		LinkedInURL: extract.NormalizeLinkedInURL(GuessLinkedInURL(company.Name)),
	}, nil
}
