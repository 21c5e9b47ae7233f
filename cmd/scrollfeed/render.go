package main

import (
	"fmt"
	"io"
	"strings"

	"scroll_feed/internal/domain"
	"scroll_feed/internal/preference"
	"scroll_feed/internal/state"
)

func renderTags(w io.Writer, tags state.Slice[string], selected []string) {
	switch tags.Status() {
	case state.StatusLoading:
		fmt.Fprintln(w, "Loading topics...")
		return
	case state.StatusFailed:
		fmt.Fprintf(w, "Could not load topics: %v\n", tags.Err)
		fmt.Fprintln(w, "Suggested topics:")
		renderTopicList(w, preference.DefaultTopics, selected)
		return
	case state.StatusEmpty:
		fmt.Fprintln(w, "No topics available.")
		return
	}

	fmt.Fprintln(w, "Topics:")
	renderTopicList(w, tags.Items, selected)
}

func renderTopicList(w io.Writer, topics, selected []string) {
	for _, t := range topics {
		mark := " "
		for _, s := range selected {
			if s == t {
				mark = "x"
				break
			}
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, t)
	}
}

func renderArticles(w io.Writer, articles state.Slice[domain.Article], sel preference.Selection) {
	switch articles.Status() {
	case state.StatusLoading:
		fmt.Fprintln(w, "Loading articles...")
	case state.StatusFailed:
		fmt.Fprintf(w, "Could not load articles: %v\n", articles.Err)
		fmt.Fprintln(w, "Run the command again to retry.")
	case state.StatusEmpty:
		fmt.Fprintf(w, "No articles match %s within %d minutes.\n",
			strings.Join(sel.Topics, " + "), sel.ReadingTime)
	case state.StatusReady:
		fmt.Fprintf(w, "%d articles for %s, %d minutes or less\n\n",
			len(articles.Items), strings.Join(sel.Topics, " + "), sel.ReadingTime)
		for _, a := range articles.Items {
			renderArticle(w, a)
			fmt.Fprintln(w)
		}
	}
}

func renderArticle(w io.Writer, a domain.Article) {
	fmt.Fprintf(w, "%s  [%s] %d min", a.Title, a.ID, a.ReadingTime)
	if a.CoinsOffered > 0 {
		fmt.Fprintf(w, "  +%d coins", a.CoinsOffered)
	}
	fmt.Fprintln(w)
	if a.Summary != "" {
		fmt.Fprintf(w, "  %s\n", a.Summary)
	}
	if len(a.Tags) > 0 {
		fmt.Fprintf(w, "  #%s\n", strings.Join(a.Tags, " #"))
	}
}
