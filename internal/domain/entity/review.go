package entity

import "time"

// Review is a user's rating of a bootcamp. A user may review a bootcamp once.
type Review struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	Bootcamp  string    `json:"bootcamp"`
	User      string    `json:"user"`
}

func (r *Review) OwnedBy(userID string) bool {
	return r.User == userID
}
