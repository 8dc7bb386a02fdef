package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostID is the server's opaque post identifier. The API sends either a
// number or a string; both decode to the same value.
type PostID string

func (id *PostID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// MarshalJSON keeps numeric ids numeric on the wire.
func (id PostID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// TagList is an ordered tag sequence with set semantics. The creation form
// submits tags as one joined field, so a comma separated string is accepted.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(b, &joined); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = nil
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

// Has reports whether tag is in the list.
func (t TagList) Has(tag string) bool {
	for _, x := range t {
		if x == tag {
			return true
		}
	}
	return false
}

// Post is one project write-up as the server describes it.
type Post struct {
	ID           PostID            `json:"id"`
	Title        string            `json:"title"`
	Pitch        string            `json:"pitch"`
	Description  string            `json:"description,omitempty"`
	Tags         TagList           `json:"tags"`
	Author       string            `json:"author"`
	AuthorAvatar string            `json:"authorAvatar,omitempty"`
	Likes        int               `json:"likes"`
	LikedByUser  *bool             `json:"liked_by_user,omitempty"`
	IsLiked      bool              `json:"isLiked"`
	Views        int               `json:"views"`
	Comments     []json.RawMessage `json:"comments"`

	// Extra holds fields the client does not interpret. They are written
	// back out alongside the known fields.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownPostFields = []string{
	"id", "title", "pitch", "description", "tags", "author",
	"authorAvatar", "author_avatar", "likes", "liked_by_user", "isLiked",
	"views", "view_count", "comments",
}

func (p *Post) UnmarshalJSON(b []byte) error {
	type plain Post
	var aux struct {
		plain
		AuthorAvatarSnake string `json:"author_avatar"`
		ViewCount         *int   `json:"view_count"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Post(aux.plain)
	if p.AuthorAvatar == "" {
		p.AuthorAvatar = aux.AuthorAvatarSnake
	}
	if aux.ViewCount != nil && p.Views == 0 {
		p.Views = *aux.ViewCount
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownPostFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// MarshalJSON writes the known fields plus Extra. A known field wins over an
// extra field of the same name.
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	b, err := json.Marshal(plain(p))
	if err != nil || len(p.Extra) == 0 {
		return b, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// CommentCount is the number of comment references attached to the post.
func (p Post) CommentCount() int { return len(p.Comments) }

// PostStat is one entry of the analytics summary.
type PostStat struct {
	Title     string `json:"title"`
	LikeCount int    `json:"like_count,omitempty"`
	ViewCount int    `json:"view_count,omitempty"`
}

// AnalyticsSummary is computed by the server for the caller's own posts.
type AnalyticsSummary struct {
	MostLiked  *PostStat `json:"most_liked,omitempty"`
	MostViewed *PostStat `json:"most_viewed,omitempty"`
}

func (a AnalyticsSummary) Empty() bool {
	return a.MostLiked == nil && a.MostViewed == nil
}

// FeedSnapshot is the complete post list from one successful fetch.
type FeedSnapshot struct {
	Posts     []Post    `json:"posts"`
	Query     string    `json:"query,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Seq       uint64    `json:"seq"`
}

// FeedClient is the backend port the feed session talks to.
type FeedClient interface {
	ListPosts(ctx context.Context) ([]Post, error)
	SearchPosts(ctx context.Context, query string) ([]Post, error)
	ToggleLike(ctx context.Context, id PostID) error
	RecordView(ctx context.Context, id PostID) error
	CheckAuth(ctx context.Context) (bool, error)
	UserPosts(ctx context.Context) ([]Post, error)
	UserAnalytics(ctx context.Context) (AnalyticsSummary, error)
}
