package dbfile

import "scroll_feed/internal/domain"

// document is the json-server style database file:
//
//	{"tags": ["Science", ...], "articles": [{"id": "1", ...}, ...]}
type document struct {
	Tags     []string         `json:"tags"`
	Articles []domain.Article `json:"articles"`
}
