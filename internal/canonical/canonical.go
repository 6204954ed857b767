// Package canonical produces the stable URL form used as a product's
// deduplication key.
package canonical

import "net/url"

// trackingParams is the fixed set of query parameters stripped before a URL is
// used as an identity key: marketing attribution, click identifiers,
// referral/session tokens and navigation state that changes between visits to
// the same product page. It is configuration, not discovered dynamically.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
	"fbclid", "gclid", "msclkid",
	"ref", "dib", "dib_tag", "keywords", "qid", "sprefix", "sr", "aref", "sp_csd", "psc",
	"pid", "lid", "marketplace", "q", "store", "srno", "otracker", "otracker1",
	"fm", "iid", "ppt", "ppn", "ssid", "qH",
	"epid", "_trkparms", "_trksid", "hash",
	"page", "sort", "filter", "search", "category", "variant",
}

// Canonicalize strips tracking parameters from rawURL and re-serializes it.
// A URL whose query becomes empty loses the trailing "?" so that
// "https://x/y?" and "https://x/y" collapse to the same key.
//
// Canonicalization is best effort and never a hard failure point: input that
// does not parse is returned unchanged so the pipeline can still proceed or
// fail later on other grounds. The function is idempotent.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	u.ForceQuery = false

	return u.String()
}
