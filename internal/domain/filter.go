package domain

// FilterState is the active search query plus the selected tags. A non-empty
// query suspends tag filtering entirely.
type FilterState struct {
	Query    string   `json:"query,omitempty"`
	Selected []string `json:"selected_tags,omitempty"`
}

func (f FilterState) Searching() bool { return f.Query != "" }

func (f FilterState) IsSelected(tag string) bool {
	return TagList(f.Selected).Has(tag)
}

// ToggleTag adds tag if absent and removes it if present. The receiver is
// not modified.
func (f FilterState) ToggleTag(tag string) FilterState {
	next := FilterState{Query: f.Query}
	if f.IsSelected(tag) {
		for _, t := range f.Selected {
			if t != tag {
				next.Selected = append(next.Selected, t)
			}
		}
		return next
	}
	next.Selected = append(append([]string(nil), f.Selected...), tag)
	return next
}

// VisiblePosts derives the rendered subset of a snapshot. While searching the
// server has already filtered, so the list is returned unchanged; otherwise a
// post is shown when no tag is selected or it carries any selected tag.
func VisiblePosts(posts []Post, f FilterState) []Post {
	if f.Searching() || len(f.Selected) == 0 {
		return posts
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		for _, t := range f.Selected {
			if p.Tags.Has(t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
