// Package paging implements offset/limit paging requests and the hypermedia
// links added to list responses.
package paging

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// Request is an offset/limit page request.
type Request struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ParseRequest coerces the offset and limit query values. Invalid values fall
// back to the defaults; rejecting them is the job of the query validators.
func ParseRequest(q url.Values) Request {
	return Request{
		Offset: coerceOffset(q.Get("offset")),
		Limit:  coerceLimit(q.Get("limit")),
	}
}

// Normalize returns r with out-of-range values replaced by the defaults.
func (r Request) Normalize() Request {
	if r.Offset < 0 {
		r.Offset = DefaultOffset
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	return r
}

func coerceOffset(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return DefaultOffset
	}
	return n
}

func coerceLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultLimit
	}
	return n
}

// Link is a single hypermedia reference.
type Link struct {
	Href string `json:"href"`
}

// Links are the navigation links of a page.
type Links struct {
	Self *Link `json:"self"`
	Prev *Link `json:"prev,omitempty"`
	Next *Link `json:"next,omitempty"`
}

// Page is a slice of rows with the paging values used to fetch it.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Links  *Links `json:"_links,omitempty"`
}

// Config is the base URL configuration links are built from. BaseURL wins;
// otherwise links point at http://Host:Port.
type Config struct {
	BaseURL string
	Host    string
	Port    string
}

// Builder builds absolute page links.
type Builder struct {
	base *url.URL
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config) (Builder, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		host := cfg.Host
		if host == "" {
			host = "127.0.0.1"
		}
		if cfg.Port != "" {
			host = net.JoinHostPort(host, cfg.Port)
		}
		raw = "http://" + host
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Builder{}, fmt.Errorf("paging: parse base url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Builder{}, fmt.Errorf("paging: base url %q must be absolute", raw)
	}
	return Builder{base: u}, nil
}

// Links returns the links for a page fetched with offset and limit that
// returned length rows. self is always present, prev iff offset > 0 and next iff
// the page is full. The prev offset is not clamped at zero.
func (b Builder) Links(path string, offset, limit, length int) Links {
	if offset < 0 {
		offset = DefaultOffset
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if length < 0 {
		length = 0
	}

	links := Links{Self: b.link(path, offset, limit)}
	if offset > 0 {
		links.Prev = b.link(path, offset-limit, limit)
	}
	if length >= limit {
		links.Next = b.link(path, offset+limit, limit)
	}
	return links
}

func (b Builder) link(path string, offset, limit int) *Link {
	var u url.URL
	if b.base != nil {
		u = *b.base.ResolveReference(&url.URL{Path: path})
	} else {
		u = url.URL{Path: path}
	}
	u.RawQuery = "offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(limit)
	u.Fragment = ""
	return &Link{Href: u.String()}
}

// Decorate adds links to page for the request path. A page that already has
// links is returned unchanged.
func Decorate[T any](b Builder, page Page[T], path string) Page[T] {
	if page.Links != nil {
		return page
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	links := b.Links(path, page.Offset, page.Limit, len(page.Items))
	page.Links = &links
	return page
}
