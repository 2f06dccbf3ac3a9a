package social

import (
	"github.com/oggyb/wandermatch/internal/db"
	core "github.com/oggyb/wandermatch/internal/social"
)

// Wire types of wandermatch.social.v1.SocialService. Timestamps are unix
// milliseconds.

type Empty struct{}

type FollowRequest struct {
	FollowerID string `json:"follower_id" validate:"required,max=64"`
	FolloweeID string `json:"followee_id" validate:"required,max=64"`
}

type FollowResponse struct {
	Created       bool  `json:"created"`
	UnixTimestamp int64 `json:"unix_timestamp"`
}

type LikeRequest struct {
	LikerID string `json:"liker_id" validate:"required,max=64"`
	LikedID string `json:"liked_id" validate:"required,max=64"`
}

type LikeResponse struct {
	Created bool       `json:"created"`
	Matched bool       `json:"matched"`
	Match   *MatchView `json:"match,omitempty"`
	Room    *RoomView  `json:"room,omitempty"`
}

type PairRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	OtherUserID string `json:"other_user_id" validate:"required,max=64"`
}

type PredicateResponse struct {
	Result bool `json:"result"`
}

type UserRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

type UserIDsResponse struct {
	UserIDs []string `json:"user_ids"`
}

type MatchView struct {
	UserID        string `json:"user_id"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ListMatchesResponse struct {
	Matches []MatchView `json:"matches"`
}

type StatsResponse struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Likes     int64 `json:"likes"`
}

type SetOnlineStatusRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Online bool   `json:"online"`
}

type UserView struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	District     string `json:"district,omitempty"`
	IsOnline     bool   `json:"is_online"`
	LastSeenUnix int64  `json:"last_seen_unix,omitempty"`
}

type GetOrCreateRoomRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	OtherUserID string `json:"other_user_id" validate:"required,max=64"`
	Romantic    bool   `json:"romantic"`
}

type RoomView struct {
	ID                    string    `json:"id"`
	Participant1ID        string    `json:"participant1_id"`
	Participant2ID        string    `json:"participant2_id"`
	IsRomantic            bool      `json:"is_romantic"`
	RomanticStartedBy     string    `json:"romantic_started_by,omitempty"`
	RomanticStartedAtUnix int64     `json:"romantic_started_at_unix,omitempty"`
	LastMessage           string    `json:"last_message,omitempty"`
	LastMessageUnix       int64     `json:"last_message_unix,omitempty"`
	Other                 *UserView `json:"other,omitempty"`
}

type RoomResponse struct {
	Room    RoomView `json:"room"`
	Created bool     `json:"created"`
}

type ListRoomsResponse struct {
	Rooms []RoomView `json:"rooms"`
}

type SendMessageRequest struct {
	RoomID   string `json:"room_id" validate:"required,max=36"`
	SenderID string `json:"sender_id" validate:"required,max=64"`
	Content  string `json:"content" validate:"required"`
}

type MessageView struct {
	ID            uint64 `json:"id"`
	RoomID        string `json:"room_id"`
	SenderID      string `json:"sender_id,omitempty"`
	Content       string `json:"content"`
	Type          string `json:"type"`
	UnixTimestamp int64  `json:"unix_timestamp"`
}

type ListMessagesRequest struct {
	RoomID          string  `json:"room_id" validate:"required,max=36"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit" validate:"gte=0,lte=500"`
}

type ListMessagesResponse struct {
	Messages            []MessageView `json:"messages"`
	NextPaginationToken *string       `json:"next_pagination_token,omitempty"`
}

type DeleteMessageRequest struct {
	MessageID   uint64 `json:"message_id" validate:"required"`
	RequesterID string `json:"requester_id" validate:"required,max=64"`
}

type SubscribeRoomRequest struct {
	RoomID string `json:"room_id" validate:"required,max=36"`
	UserID string `json:"user_id" validate:"required,max=64"`
}

type CreatePostRequest struct {
	AuthorID    string `json:"author_id" validate:"required,max=64"`
	Content     string `json:"content" validate:"required"`
	LocationTag string `json:"location_tag,omitempty" validate:"max=128"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
}

type PostView struct {
	ID            uint64    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Content       string    `json:"content"`
	LocationTag   string    `json:"location_tag,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	UnixTimestamp int64     `json:"unix_timestamp"`
	Author        *UserView `json:"author,omitempty"`
}

type ListPostsRequest struct {
	LocationTag     string  `json:"location_tag,omitempty" validate:"max=128"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit" validate:"gte=0,lte=500"`
}

type ListUserPostsRequest struct {
	UserID          string  `json:"user_id" validate:"required,max=64"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit" validate:"gte=0,lte=500"`
}

type ListPostsResponse struct {
	Posts               []PostView `json:"posts"`
	NextPaginationToken *string    `json:"next_pagination_token,omitempty"`
}

func userView(u *db.User) *UserView {
	v := &UserView{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		District:    u.District,
		IsOnline:    u.IsOnline,
	}
	if u.LastSeen != nil {
		v.LastSeenUnix = u.LastSeen.UnixMilli()
	}
	return v
}

func roomView(r *db.ChatRoom) RoomView {
	v := RoomView{
		ID:             r.ID,
		Participant1ID: r.Participant1ID,
		Participant2ID: r.Participant2ID,
		IsRomantic:     r.IsRomantic,
		LastMessage:    r.LastMessage,
	}
	if r.RomanticStartedBy != nil {
		v.RomanticStartedBy = *r.RomanticStartedBy
	}
	if r.RomanticStartedAt != nil {
		v.RomanticStartedAtUnix = r.RomanticStartedAt.UnixMilli()
	}
	if r.LastMessageTime != nil {
		v.LastMessageUnix = r.LastMessageTime.UnixMilli()
	}
	return v
}

func roomListView(rv core.RoomView) RoomView {
	v := roomView(&rv.Room)
	v.Other = userView(&rv.Other)
	return v
}

func messageView(m *db.ChatMessage) MessageView {
	v := MessageView{
		ID:            m.ID,
		RoomID:        m.ChatRoomID,
		Content:       m.Content,
		Type:          m.MessageType,
		UnixTimestamp: m.CreatedAt.UnixMilli(),
	}
	if m.SenderID != nil {
		v.SenderID = *m.SenderID
	}
	return v
}

func postView(p *db.CommunityPost) PostView {
	return PostView{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Content:       p.Content,
		LocationTag:   p.LocationTag,
		ImageURL:      p.ImageURL,
		UnixTimestamp: p.CreatedAt.UnixMilli(),
	}
}

func postListView(pv core.PostView) PostView {
	v := postView(&pv.Post)
	v.Author = userView(&pv.Author)
	return v
}
