package domain

import (
	"encoding/json"
	"net/url"
	"strings"
)

// URL is a parsed URL that serializes as its string form.
type URL struct {
	*url.URL
}

func (u URL) MarshalJSON() (text []byte, err error) {
	return json.Marshal(u.String())
}

func (u *URL) UnmarshalJSON(text []byte) (err error) {
	var raw string
	err = json.Unmarshal(text, &raw)
	if err != nil {
		return
	}
	*u, err = ParseURL(raw)
	return
}

func (u URL) String() string {
	if u.URL == nil {
		return ""
	}
	return u.URL.String()
}

func (u *URL) ModifyQuery(mod func(query *url.Values)) URL {
	newURL := u.Clone()
	query := newURL.Query()
	mod(&query)
	newURL.RawQuery = query.Encode()
	return newURL
}

func (u *URL) Clone() URL {
	inner := *u.URL
	return URL{&inner}
}

func ParseURL(text string) (u URL, err error) {
	p, err := url.Parse(text)
	u = URL{p}
	return
}

// IsWebURL reports whether text is an absolute http(s) URL. Image and product
// links are stored as given and never fetched.
func IsWebURL(text string) bool {
	u, err := ParseURL(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
