package models

import "time"

// SessionColor carries the display colors of a generated session.
type SessionColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

// Session is a dated occurrence of a group schedule entry. It is derived on
// every request and never stored.
type Session struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Color     SessionColor `json:"color"`
	GroupID   string       `json:"group_id"`
	GroupName string       `json:"group_name"`
	Subject   string       `json:"subject"`
	Room      string       `json:"room"`
}

// Note is an ad hoc calendar entry kept in process memory only.
type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	Content string    `json:"content"`
}
