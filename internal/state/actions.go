package state

import "scroll_feed/internal/domain"

// Kind identifies an action.
type Kind string

const (
	KindFetchTags        Kind = "FETCH_TAGS"
	KindFetchTagsSuccess Kind = "FETCH_TAGS_SUCCESS"
	KindFetchTagsFailure Kind = "FETCH_TAGS_FAILURE"

	KindFetchArticles        Kind = "FETCH_ARTICLES"
	KindFetchArticlesSuccess Kind = "FETCH_ARTICLES_SUCCESS"
	KindFetchArticlesFailure Kind = "FETCH_ARTICLES_FAILURE"
)

// Action is anything the store can reduce.
type Action interface {
	Kind() Kind
}

// Request starts the lifecycle of one fetch. It is the only kind of action
// callers outside the store can dispatch.
type Request interface {
	Action
	request()
}

// Terminal ends the lifecycle of one Request. Terminal actions reach the store
// only through an Emitter handed to an Effect.
type Terminal interface {
	Action
	terminal()
}

type FetchTags struct{}

type FetchTagsSuccess struct {
	Tags []domain.Tag
}

type FetchTagsFailure struct {
	Err error
}

// FetchArticles asks for articles no longer than ReadingTime minutes that
// carry every tag in SelectedTags.
type FetchArticles struct {
	SelectedTags []string
	ReadingTime  int
}

type FetchArticlesSuccess struct {
	Articles []domain.Article
}

type FetchArticlesFailure struct {
	Err error
}

func (FetchTags) Kind() Kind            { return KindFetchTags }
func (FetchTagsSuccess) Kind() Kind     { return KindFetchTagsSuccess }
func (FetchTagsFailure) Kind() Kind     { return KindFetchTagsFailure }
func (FetchArticles) Kind() Kind        { return KindFetchArticles }
func (FetchArticlesSuccess) Kind() Kind { return KindFetchArticlesSuccess }
func (FetchArticlesFailure) Kind() Kind { return KindFetchArticlesFailure }

func (FetchTags) request()     {}
func (FetchArticles) request() {}

func (FetchTagsSuccess) terminal()     {}
func (FetchTagsFailure) terminal()     {}
func (FetchArticlesSuccess) terminal() {}
func (FetchArticlesFailure) terminal() {}
