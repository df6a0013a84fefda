package models

// Response is the envelope every cineflix API endpoint replies with.
//
// Success is false on every error status; Message then explains why.
type Response struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	User         *User         `json:"user,omitempty"`
	Plans        []Plan        `json:"plans,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
