package generator

import "net/url"

// Search-URL bases for marketplaces that don't expose a stable per-card
// deep link in CardMetadata, grounded on
// original_source/src/signals/deep_link.py.
const (
	tcgplayerSearchBase  = "https://www.tcgplayer.com/search/pokemon/product?q="
	cardmarketSearchBase = "https://www.cardmarket.com/en/Pokemon/Cards?searchString="
)

// buildDeepLink returns existingURL unmodified when present, otherwise a
// URL-encoded search URL built from the card and set name.
func buildDeepLink(base, cardName, setName, existingURL string) string {
	if existingURL != "" {
		return existingURL
	}
	query := cardName
	if setName != "" {
		query = cardName + " " + setName
	}
	return base + url.QueryEscape(query)
}

func buildSignalURLs(cardName, setName, tcgplayerURL, cardmarketURL string) (tcg, cm string) {
	return buildDeepLink(tcgplayerSearchBase, cardName, setName, tcgplayerURL),
		buildDeepLink(cardmarketSearchBase, cardName, setName, cardmarketURL)
}
