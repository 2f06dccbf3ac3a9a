package db

import (
	"time"
)

// Message types stored in ChatMessage.MessageType.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// User mirrors the identity store's profile row. The engine only reads it,
// apart from the online flag.
type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	DisplayName  string `gorm:"size:128;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255"`
	Locale       string `gorm:"size:16;default:'en'"`
	District     string `gorm:"size:64"`
	IsOnline     bool   `gorm:"default:false"`
	LastSeen     *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// FollowEdge is a directional "follower follows followee" relationship.
//
// Composite PK: (FollowerID, FolloweeID)
//   - At most one edge per ordered pair.
//
// Indexes:
//   - idx_follow_followee(followee_id) for follower lists.
type FollowEdge struct {
	FollowerID string    `gorm:"primaryKey;size:64"`
	FolloweeID string    `gorm:"primaryKey;size:64;index:idx_follow_followee"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// LikeEdge is a directional "liker likes liked" relationship.
//
// Composite PK: (LikerID, LikedID)
//   - At most one edge per ordered pair; the PK also serves the reciprocal
//     lookup done by the match detector.
//
// Indexes:
//   - idx_like_liked(liked_id) for "who liked me" lists and counts.
type LikeEdge struct {
	LikerID   string    `gorm:"primaryKey;size:64"`
	LikedID   string    `gorm:"primaryKey;size:64;index:idx_like_liked"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchRecord materializes a mutual like. User1ID < User2ID always.
type MatchRecord struct {
	User1ID   string    `gorm:"primaryKey;size:64"`
	User2ID   string    `gorm:"primaryKey;size:64;index:idx_match_user2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatRoom is the single conversation between an unordered user pair.
//
// Participant1ID < Participant2ID always; idx_room_pair makes the canonical
// pair unique so concurrent creators converge on one row.
//
// idx_room_milestone(is_romantic, twenty_day_message_sent, romantic_started_at)
// serves the milestone sweep.
type ChatRoom struct {
	ID                   string     `gorm:"primaryKey;size:36"`
	Participant1ID       string     `gorm:"size:64;not null;uniqueIndex:idx_room_pair,priority:1"`
	Participant2ID       string     `gorm:"size:64;not null;uniqueIndex:idx_room_pair,priority:2;index:idx_room_participant2"`
	IsRomantic           bool       `gorm:"not null;default:false;index:idx_room_milestone,priority:1"`
	RomanticStartedBy    *string    `gorm:"size:64"`
	RomanticStartedAt    *time.Time `gorm:"index:idx_room_milestone,priority:3"`
	TwentyDayMessageSent bool       `gorm:"not null;default:false;index:idx_room_milestone,priority:2"`
	LastMessage          string     `gorm:"type:text"`
	LastMessageTime      *time.Time
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
}

// Other returns the participant that is not userID.
func (r *ChatRoom) Other(userID string) string {
	if r.Participant1ID == userID {
		return r.Participant2ID
	}
	return r.Participant1ID
}

// HasParticipant reports whether userID is one of the room's two members.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return r.Participant1ID == userID || r.Participant2ID == userID
}

// ChatMessage is one entry of a room's log. ID is auto-increment and breaks
// created_at ties in insertion order. A nil SenderID marks a system message.
type ChatMessage struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	ChatRoomID  string    `gorm:"size:36;not null;index:idx_message_room_created,priority:1"`
	SenderID    *string   `gorm:"size:64"`
	Content     string    `gorm:"type:text;not null"`
	MessageType string    `gorm:"size:16;not null;default:'text'"`
	CreatedAt   time.Time `gorm:"index:idx_message_room_created,priority:2"`
}

// CommunityPost is a traveller's post on the community feed, optionally
// tagged with the place it is about. ID is auto-increment so the feed can
// page by (created_at, id).
//
// Indexes:
//   - idx_post_created(created_at) for the whole feed.
//   - idx_post_author(author_id, created_at) for one traveller's posts.
//   - idx_post_location(location_tag, created_at) for one place's feed.
type CommunityPost struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	AuthorID    string    `gorm:"size:64;not null;index:idx_post_author,priority:1"`
	Content     string    `gorm:"type:text;not null"`
	LocationTag string    `gorm:"size:128;index:idx_post_location,priority:1"`
	ImageURL    string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"index:idx_post_created;index:idx_post_author,priority:2;index:idx_post_location,priority:2"`
}

// Models lists every table the engine owns, in migration order.
func Models() []any {
	return []any{
		&User{},
		&FollowEdge{},
		&LikeEdge{},
		&MatchRecord{},
		&ChatRoom{},
		&ChatMessage{},
		&CommunityPost{},
	}
}
