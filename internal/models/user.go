package models

import "time"

type Role string

const (
	RoleStandard      Role = "standard"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       []byte
	RecoverySecretHash []byte
	Phone              string
	Address            string
	Role               Role
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
