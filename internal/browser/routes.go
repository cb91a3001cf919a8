package browser

import "github.com/playwright-community/playwright-go"

// BlockHeavyAssets aborts image, stylesheet and font requests so a page
// settles on DOM content without waiting for slow assets.
func BlockHeavyAssets(page playwright.Page) error {
	return page.Route("**/*.{png,jpg,jpeg,gif,svg,webp,css,woff,woff2,ttf}", func(route playwright.Route) {
		_ = route.Abort()
	})
}
