package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Thumbnail is a reference to an uploaded course image on the media host.
type Thumbnail struct {
	PublicID string `json:"publicId" gorm:"column:thumbnail_public_id"`
	URL      string `json:"url" gorm:"column:thumbnail_url"`
}

// TitledItem is a benefit or prerequisite bullet point.
type TitledItem struct {
	Title string `json:"title"`
}

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Comment struct {
	User    string   `json:"user"`
	Comment string   `json:"comment"`
	Replies []string `json:"commentReplies,omitempty"`
}

type Review struct {
	User    string  `json:"user"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Section is one unit of course content. VideoURL, Links, Suggestion and
// Questions are only served to enrolled users.
type Section struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	VideoSection string    `json:"videoSection"`
	VideoLength  int       `json:"videoLength"`
	VideoPlayer  string    `json:"videoPlayer"`
	Links        []Link    `json:"links,omitempty"`
	Suggestion   string    `json:"suggestion,omitempty"`
	Questions    []Comment `json:"questions,omitempty"`
}

type Course struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string         `json:"name" gorm:"not null"`
	Description    string         `json:"description" gorm:"not null"`
	Price          float64        `json:"price" gorm:"not null"`
	EstimatedPrice float64        `json:"estimatedPrice"`
	Thumbnail      Thumbnail      `json:"thumbnail" gorm:"embedded"`
	Tags           string         `json:"tags" gorm:"not null"`
	Level          string         `json:"level" gorm:"not null"`
	DemoURL        string         `json:"demoUrl" gorm:"not null"`
	Benefits       datatypes.JSON `json:"benefits" gorm:"type:jsonb"`
	Prerequisites  datatypes.JSON `json:"prerequisites" gorm:"type:jsonb"`
	Reviews        datatypes.JSON `json:"reviews" gorm:"type:jsonb"`
	Sections       datatypes.JSON `json:"courseData" gorm:"type:jsonb"`
	Ratings        float64        `json:"ratings" gorm:"default:0"`
	Purchased      int            `json:"purchased" gorm:"default:0"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
