package models

import "time"

// DefaultCategory is applied when an item is created without a category.
// Categories are an open-ended tag; the store does not constrain them to
// the set the storefront knows how to color and label.
const DefaultCategory = "coffee"

// MenuItem represents one purchasable café item with bilingual text,
// a whole-dinar price, and a reference to a previously uploaded image.
type MenuItem struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Title              string    `json:"title" gorm:"type:varchar(255);not null"`
	TitleKurdish       string    `json:"titleKurdish" gorm:"type:varchar(255);default:''"`
	Description        string    `json:"description" gorm:"type:text;default:''"`
	DescriptionKurdish string    `json:"descriptionKurdish" gorm:"type:text;default:''"`
	Category           string    `json:"category" gorm:"type:varchar(50);not null;default:coffee"`
	Price              int       `json:"price" gorm:"not null"`
	ImageURL           string    `json:"imageUrl" gorm:"column:image_url;type:text;not null"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (m *MenuItem) TableName() string {
	return "menu_items"
}
