package domain

import "time"

// AccountStatus is PENDING until email verification succeeds. It never goes back.
type AccountStatus string

const (
	AccountPending AccountStatus = "PENDING"
	AccountActive  AccountStatus = "ACTIVE"
)

type Account struct {
	UserID        string        `json:"id" dynamodbav:"user_id"`
	Username      string        `json:"username" dynamodbav:"username"`
	Email         string        `json:"email" dynamodbav:"email"`
	PasswordHash  string        `json:"-" dynamodbav:"password_hash"`
	AccountStatus AccountStatus `json:"account_status" dynamodbav:"account_status"`
	Name          string        `json:"name" dynamodbav:"name"`
	Avatar        string        `json:"avatar" dynamodbav:"avatar"` // S3 object key
	Phone         *string       `json:"phone" dynamodbav:"phone"`
	Roles         []string      `json:"roles" dynamodbav:"roles,stringset,omitempty"`
	PostCount     int           `json:"post_count" dynamodbav:"post_count"`
	Followers     int           `json:"followers" dynamodbav:"followers"`
	Following     int           `json:"following" dynamodbav:"following"`
	CreatedAt     time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time     `json:"updated" dynamodbav:"updated_at"`
}

// Profile is the public projection of an Account: no credential, no status.
type Profile struct {
	UserID    string   `json:"id" dynamodbav:"user_id"`
	Name      string   `json:"name" dynamodbav:"name"`
	Phone     *string  `json:"phone" dynamodbav:"phone"`
	Username  string   `json:"username" dynamodbav:"username"`
	Email     string   `json:"email" dynamodbav:"email"`
	Roles     []string `json:"roles" dynamodbav:"roles,stringset,omitempty"`
	PostCount int      `json:"post_count" dynamodbav:"post_count"`
	Followers int      `json:"followers" dynamodbav:"followers"`
	Following int      `json:"following" dynamodbav:"following"`
	Avatar    string   `json:"avatar" dynamodbav:"avatar"`
}

// ProfileAttributes lists the stored attributes that make up a Profile.
var ProfileAttributes = []string{
	"user_id", "name", "phone", "username", "email", "roles",
	"post_count", "followers", "following", "avatar",
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}
