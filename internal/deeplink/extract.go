// AngelaMos | 2026
// extract.go

package deeplink

import (
	"net/url"
	"strings"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// ExtractTokens pulls the OAuth token pair out of a callback URL.
// The hash fragment wins over the query string: providers put tokens
// there so they never reach a server in the query. A fragment trailing
// the query is stripped, never parsed as part of it. An incomplete pair
// is returned as-is; callers treat it as a recoverable condition.
func ExtractTokens(rawURL string) TokenPair {
	var fragment TokenPair

	if idx := strings.Index(rawURL, "#"); idx >= 0 {
		fragment = parsePair(rawURL[idx+1:])
		if fragment.Complete() {
			return fragment
		}
	}

	if idx := strings.Index(rawURL, "?"); idx >= 0 {
		query := rawURL[idx+1:]
		if hash := strings.Index(query, "#"); hash >= 0 {
			query = query[:hash]
		}

		fromQuery := parsePair(query)
		if fromQuery.Complete() {
			return fromQuery
		}
		if fragment.Empty() {
			return fromQuery
		}
	}

	return fragment
}

func parsePair(encoded string) TokenPair {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return TokenPair{}
	}

	return TokenPair{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
	}
}
