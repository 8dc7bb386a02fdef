package feed

import (
	"context"
	"reflect"
	"testing"

	"github.com/qepting91/devfeed/internal/domain"
)

func loadedSession(t *testing.T, posts ...domain.Post) *Session {
	t.Helper()
	fc := &fakeClient{
		list: func(context.Context) ([]domain.Post, error) { return posts, nil },
	}
	s := newTestSession(fc, &recorder{})
	if err := s.LoadFeed(context.Background()); err != nil {
		t.Fatalf("LoadFeed: %v", err)
	}
	return s
}

func TestVisible_TagSelectionUsesOrSemantics(t *testing.T) {
	s := loadedSession(t, post("1", "Go"), post("2", "React"))

	if got := ids(s.Visible()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("no tags selected: %v", got)
	}

	s.ToggleTag("React")
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("React selected: %v, want [2]", got)
	}

	s.ToggleTag("Go")
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("Go+React selected: %v, want both", got)
	}

	s.ToggleTag("React")
	s.ToggleTag("Go")
	if got := s.Filter().Selected; len(got) != 0 {
		t.Fatalf("selection after toggling back = %v", got)
	}
}

func TestVisible_SearchWithNoResultsIgnoresTags(t *testing.T) {
	fc := &fakeClient{
		search: func(context.Context, string) ([]domain.Post, error) { return []domain.Post{}, nil },
	}
	s := newTestSession(fc, &recorder{})
	s.ToggleTag("React")
	s.SetQuery("graphql")
	if err := s.LoadFeed(context.Background()); err != nil {
		t.Fatalf("LoadFeed: %v", err)
	}

	if got := s.Visible(); len(got) != 0 {
		t.Fatalf("visible = %v, want none", ids(got))
	}
	if !s.Filter().Searching() {
		t.Fatal("expected search mode")
	}
}

func TestVisible_SearchResultsAreNotTagFiltered(t *testing.T) {
	fc := &fakeClient{
		search: func(context.Context, string) ([]domain.Post, error) {
			return []domain.Post{post("1", "Go"), post("2", "Python")}, nil
		},
	}
	s := newTestSession(fc, &recorder{})
	s.ToggleTag("React")
	s.SetQuery("api")
	_ = s.LoadFeed(context.Background())

	if got := ids(s.Visible()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("visible = %v, want server results unchanged", got)
	}
}

func TestSetQuery_ReportsChange(t *testing.T) {
	s := newTestSession(&fakeClient{}, &recorder{})
	if !s.SetQuery("go") {
		t.Fatal("first SetQuery should report a change")
	}
	if s.SetQuery("go") {
		t.Fatal("same query should not report a change")
	}
	if !s.SetQuery("") {
		t.Fatal("clearing the query should report a change")
	}
}
