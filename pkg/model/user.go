package model

import (
	"time"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
)

// User is an account that can authenticate against the API.
type User struct {
	ID           uint            `gorm:"column:id;primaryKey"`
	Username     string          `gorm:"column:username;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash"`
	Role         permission.Role `gorm:"column:role;type:text"`
	Groups       []Group         `gorm:"many2many:user_groups;joinForeignKey:UserID;joinReferences:GroupID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// Permissions flattens the permissions of every group the user belongs to.
// Groups must be preloaded with their permissions.
func (u *User) Permissions() permission.Set {
	set := permission.NewSet()
	for _, g := range u.Groups {
		for _, gp := range g.Permissions {
			set[gp.Permission] = struct{}{}
		}
	}
	return set
}

// Group bundles permissions granted to its members.
type Group struct {
	ID          uint              `gorm:"column:id;primaryKey"`
	Name        string            `gorm:"column:name;uniqueIndex"`
	Permissions []GroupPermission `gorm:"foreignKey:GroupID"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupPermission grants one permission to one group.
type GroupPermission struct {
	GroupID    uint                  `gorm:"column:group_id;primaryKey"`
	Permission permission.Permission `gorm:"column:permission;primaryKey;type:text"`
}

func (GroupPermission) TableName() string {
	return "group_permissions"
}
