package collector

import (
	"encoding/json"
	"errors"

	"github.com/qepting91/devfeed/internal/domain"
)

// One decode function per endpoint. Each returns a typed value or a
// well-defined empty value; shape ambiguity stops here.

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func decodePosts(raw json.RawMessage) ([]domain.Post, error) {
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// decodeListing reads the post list from "data".
func decodeListing(body []byte) ([]domain.Post, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if !present(env.Data) {
		return []domain.Post{}, nil
	}
	return decodePosts(env.Data)
}

// decodeSearch reads "data", falls back to "results", else empty.
func decodeSearch(body []byte) ([]domain.Post, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	switch {
	case present(env.Data):
		return decodePosts(env.Data)
	case present(env.Results):
		return decodePosts(env.Results)
	default:
		return []domain.Post{}, nil
	}
}

// decodeOwnPosts treats anything but an array under "data" as empty.
func decodeOwnPosts(body []byte) ([]domain.Post, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if !present(env.Data) || env.Data[0] != '[' {
		return []domain.Post{}, nil
	}
	return decodePosts(env.Data)
}

func decodeAuth(body []byte) (bool, error) {
	var resp struct {
		Authenticated *bool `json:"authenticated"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	if resp.Authenticated == nil {
		return false, errors.New("missing authenticated field")
	}
	return *resp.Authenticated, nil
}

func decodeAnalytics(body []byte) (domain.AnalyticsSummary, error) {
	var summary domain.AnalyticsSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return domain.AnalyticsSummary{}, err
	}
	return summary, nil
}
