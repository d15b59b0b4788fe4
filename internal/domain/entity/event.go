package entity

import "time"

// MainEvent is a recurring exhibition (e.g. one edition of a defence show)
type MainEvent struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	LinkName    string    `bson:"linkName,omitempty" json:"linkName,omitempty"` // preferred latin short name for paths
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SubEvent belongs to exactly one MainEvent. The parent may no longer exist.
type SubEvent struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	MainEventID string    `bson:"mainEventId" json:"mainEventId"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
