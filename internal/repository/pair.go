package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CanonicalPair orders two user ids so the lexicographically smaller one
// comes first. Every pair-keyed table (matches, chat rooms) stores and looks
// up rows in this order, which is what makes (a,b) and (b,a) the same key.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// latest adds FOR SHARE so a read inside a REPEATABLE READ transaction
// sees a row another transaction committed after the snapshot was taken.
// The SQLite dialect drops the clause.
func latest(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "SHARE"})
}
