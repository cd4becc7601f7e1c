// Package scraper provides HTTP fetching and HTML parsing for a changelog page.
//
// The changelog is served as a JSON page payload whose pageProps.content field
// holds the rendered HTML. The scraper fetches that payload and turns the HTML
// into changelog.Update records: one per level-2 heading, with the heading's list
// items flattened into bullet text.
package scraper
