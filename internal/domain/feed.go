package domain

import "time"

type FeedItem struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverImageURL *string   `json:"coverImageUrl"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MaxFeedFollowing bounds how many followed authors feed the following feed.
const MaxFeedFollowing = 400
