package domain

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Avatar is a reference to an uploaded image on the media host.
type Avatar struct {
	PublicID string `json:"publicId" gorm:"column:avatar_public_id"`
	URL      string `json:"url" gorm:"column:avatar_url"`
}

// CourseRef is a single entry in a user's enrolled-course list.
type CourseRef struct {
	CourseID string `json:"courseId"`
}

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName    string         `json:"firstname" gorm:"not null"`
	LastName     string         `json:"lastname" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Avatar       Avatar         `json:"avatar" gorm:"embedded"`
	Role         Role           `json:"role" gorm:"default:user"`
	IsVerified   bool           `json:"isVerified" gorm:"default:false"`
	Courses      datatypes.JSON `json:"courses" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// EnrolledIn reports whether the user's course list contains courseID.
func (u *User) EnrolledIn(courseID string) bool {
	refs, err := u.CourseRefs()
	if err != nil {
		return false
	}
	for _, ref := range refs {
		if ref.CourseID == courseID {
			return true
		}
	}
	return false
}

// CourseRefs decodes the enrolled-course list.
func (u *User) CourseRefs() ([]CourseRef, error) {
	if len(u.Courses) == 0 {
		return nil, nil
	}
	var refs []CourseRef
	if err := json.Unmarshal(u.Courses, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
