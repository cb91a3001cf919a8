package scrape

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// SeekScraper reads job postings from seek.com.au job-detail pages.
type SeekScraper struct{}

func NewSeekScraper() Scraper {
	return &SeekScraper{}
}

func (s *SeekScraper) Name() string {
	return "Seek"
}

func (s *SeekScraper) Extract(_ context.Context, page playwright.Page) (*JobData, error) {
	title, err := page.Locator(`h1[data-automation="job-detail-title"]`).InnerText()
	if err != nil {
		return nil, fmt.Errorf("seek: job title: %w", err)
	}

	company, err := page.Locator(`span[data-automation="advertiser-name"]`).InnerText()
	if err != nil {
		return nil, fmt.Errorf("seek: advertiser name: %w", err)
	}

	location, err := page.Locator(`span[data-automation="job-detail-location"]`).InnerText()
	if err != nil {
		return nil, fmt.Errorf("seek: job location: %w", err)
	}

	details, err := page.Locator(`div[data-automation="jobAdDetails"]`).AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("seek: job ad details: %w", err)
	}

	return &JobData{
		Title:    title,
		Company:  company,
		Location: location,
		Details:  details,
	}, nil
}
