package state

import "scroll_feed/internal/domain"

// ReduceTags applies a to the tags slice.
func ReduceTags(s Slice[domain.Tag], a Action) Slice[domain.Tag] {
	switch a := a.(type) {
	case FetchTags:
		s.Loading = true
		s.Err = nil
	case FetchTagsSuccess:
		s.Loading = false
		s.Items = a.Tags
	case FetchTagsFailure:
		s.Loading = false
		s.Err = a.Err
		s.Items = nil
	}
	return s
}

// ReduceArticles applies a to the articles slice.
func ReduceArticles(s Slice[domain.Article], a Action) Slice[domain.Article] {
	switch a := a.(type) {
	case FetchArticles:
		s.Loading = true
		s.Err = nil
	case FetchArticlesSuccess:
		s.Loading = false
		s.Items = a.Articles
	case FetchArticlesFailure:
		s.Loading = false
		s.Err = a.Err
		s.Items = nil
	}
	return s
}

// Reduce is the root reducer.
func Reduce(s State, a Action) State {
	return State{
		Tags:     ReduceTags(s.Tags, a),
		Articles: ReduceArticles(s.Articles, a),
		Seq:      s.Seq + 1,
	}
}
