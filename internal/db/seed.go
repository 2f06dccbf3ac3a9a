package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var demoTravellers = []struct{ name, district string }{
	{"Anu", "Ernakulam"},
	{"Biju", "Idukki"},
	{"Chitra", "Alappuzha"},
	{"Dev", "Thiruvananthapuram"},
	{"Fathima", "Kozhikode"},
	{"Gokul", "Wayanad"},
	{"Hari", "Thrissur"},
	{"Indu", "Kottayam"},
	{"Jacob", "Kannur"},
	{"Kavya", "Palakkad"},
	{"Lakshmi", "Kollam"},
	{"Midhun", "Malappuram"},
}

// SeedTestData resets the database and populates it with demo travellers.
//
// Behavior:
//  1. Clears posts, messages, rooms, matches, likes, follows and users.
//  2. Creates 12 Kerala travellers with hashed passwords.
//  3. Adds random follows and likes (~60% like rate); every 3rd like is
//     made mutual.
//  4. Every mutual pair gets its MatchRecord and a romantic room; some
//     rooms are old enough for the twenty-day milestone to fire.
//  5. Each traveller posts once, tagged with their home district.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC().Truncate(time.Millisecond)

	// --- Fresh start ---
	for _, table := range []string{"community_posts", "chat_messages", "chat_rooms", "match_records", "like_edges", "follow_edges", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset the message id sequence
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE chat_messages AUTO_INCREMENT = 1")
	case "postgres":
		db.Exec("ALTER SEQUENCE chat_messages_id_seq RESTART WITH 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'chat_messages'")
	}
	log.Info("cleared existing data")

	// --- Seed users ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	ids := make([]string, 0, len(demoTravellers))
	for _, tr := range demoTravellers {
		id := strings.ToLower(tr.name)
		lastSeen := now.Add(-time.Duration(r.Intn(500)) * time.Hour)
		user := User{
			ID:           id,
			DisplayName:  tr.name,
			Email:        id + "@wandermatch.example",
			PasswordHash: string(hash),
			Locale:       "en",
			District:     tr.district,
			LastSeen:     &lastSeen,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		ids = append(ids, id)
	}
	log.Info("seeded users", "count", len(ids))

	insert := func(v any) error {
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
	}

	// --- Seed follows and likes ---
	type pair struct{ a, b string }
	likes := map[pair]time.Time{}
	counter := 0
	for _, actor := range ids {
		for j := 0; j < 5; j++ {
			other := ids[r.Intn(len(ids))]
			if other == actor {
				continue
			}
			if err := insert(&FollowEdge{FollowerID: actor, FolloweeID: other, CreatedAt: now}); err != nil {
				return fmt.Errorf("failed to seed follow: %w", err)
			}

			if r.Intn(100) >= 60 && counter%3 != 0 {
				counter++
				continue
			}
			at := now.Add(-time.Duration(r.Intn(40*24)) * time.Hour)
			if err := insert(&LikeEdge{LikerID: actor, LikedID: other, CreatedAt: at}); err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			likes[pair{actor, other}] = at

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				back := at.Add(time.Duration(r.Intn(48)+1) * time.Hour)
				if back.After(now) {
					back = now
				}
				if err := insert(&LikeEdge{LikerID: other, LikedID: actor, CreatedAt: back}); err != nil {
					return fmt.Errorf("failed to seed like: %w", err)
				}
				likes[pair{other, actor}] = back
			}
			counter++
		}
	}

	// --- Matches and romantic rooms for every mutual pair ---
	matches := 0
	for p, at := range likes {
		backAt, ok := likes[pair{p.b, p.a}]
		if !ok || p.a > p.b {
			continue
		}
		// the later like completed the match
		starter, startedAt := p.a, at
		if backAt.After(at) {
			starter, startedAt = p.b, backAt
		}

		if err := insert(&MatchRecord{User1ID: p.a, User2ID: p.b, CreatedAt: startedAt}); err != nil {
			return fmt.Errorf("failed to seed match: %w", err)
		}
		room := ChatRoom{
			ID:                uuid.NewString(),
			Participant1ID:    p.a,
			Participant2ID:    p.b,
			IsRomantic:        true,
			RomanticStartedBy: &starter,
			RomanticStartedAt: &startedAt,
			CreatedAt:         startedAt,
			UpdatedAt:         startedAt,
		}
		if err := insert(&room); err != nil {
			return fmt.Errorf("failed to seed room: %w", err)
		}
		matches++
	}
	log.Info("seeded social graph", "likes", len(likes), "matches", matches)

	// --- Community posts ---
	for i, tr := range demoTravellers {
		post := CommunityPost{
			AuthorID:    ids[i],
			Content:     fmt.Sprintf("Anyone around %s this week? Happy to show you my favourite spots.", tr.district),
			LocationTag: tr.district,
			CreatedAt:   now.Add(-time.Duration(r.Intn(72)) * time.Hour),
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
	}
	log.Info("seeded posts", "count", len(demoTravellers))

	return nil
}
