package domain

type FollowDirection string

const (
	FollowersDirection FollowDirection = "followers"
	FollowingDirection FollowDirection = "following"
)

type FollowListItem struct {
	ID                string  `json:"id"`
	Handle            string  `json:"handle"`
	DisplayName       string  `json:"displayName"`
	AvatarURL         *string `json:"avatarUrl"`
	Bio               string  `json:"bio"`
	ViewerIsFollowing bool    `json:"viewerIsFollowing"`
}

type FollowListOwner struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}
