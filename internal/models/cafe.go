package models

import (
	"time"
)

type Cafe struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	AuthorID *uint `gorm:"index" json:"author_id,omitempty"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`

	Name     string `gorm:"type:varchar(250);uniqueIndex;not null" json:"name"`
	MapURL   string `gorm:"type:varchar(500);not null" json:"map_url"`
	ImgURL   string `gorm:"type:varchar(500);not null" json:"img_url"`
	Location string `gorm:"type:varchar(250);not null;index" json:"location"`

	// Free-form capacity descriptor, e.g. "20-30".
	Seats string `gorm:"type:varchar(250);not null" json:"seats"`

	HasToilet    bool `gorm:"not null" json:"has_toilet"`
	HasWifi      bool `gorm:"not null" json:"has_wifi"`
	HasSockets   bool `gorm:"not null" json:"has_sockets"`
	CanTakeCalls bool `gorm:"not null" json:"can_take_calls"`

	// Currency-formatted string, e.g. "£2.75". Optional.
	CoffeePrice string `gorm:"type:varchar(250)" json:"coffee_price,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
