package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// LinkedInScraper reads public LinkedIn job pages (the logged-out layout).
type LinkedInScraper struct{}

func NewLinkedInScraper() Scraper {
	return &LinkedInScraper{}
}

func (s *LinkedInScraper) Name() string {
	return "LinkedIn"
}

func (s *LinkedInScraper) Extract(_ context.Context, page playwright.Page) (*JobData, error) {
	title, err := page.Locator("h1.top-card-layout__title").InnerText()
	if err != nil {
		return nil, fmt.Errorf("linkedin: job title: %w", err)
	}

	company, err := page.Locator("a.topcard__org-name-link").First().InnerText()
	if err != nil {
		return nil, fmt.Errorf("linkedin: company name: %w", err)
	}

	location, err := page.Locator("span.topcard__flavor--bullet").First().InnerText()
	if err != nil {
		return nil, fmt.Errorf("linkedin: job location: %w", err)
	}

	details, err := page.Locator("div.description__text").AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("linkedin: job description: %w", err)
	}

	for i, d := range details {
		details[i] = strings.TrimSpace(d)
	}

	return &JobData{
		Title:    strings.TrimSpace(title),
		Company:  strings.TrimSpace(company),
		Location: strings.TrimSpace(location),
		Details:  details,
	}, nil
}
