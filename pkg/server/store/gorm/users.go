package gorm

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// Ensure GroupsStore implements store.GroupsStore
var _ store.GroupsStore = (*GroupsStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// CreateUser inserts the user unless the username is already taken.
func (s *UsersStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrUsernameTaken
		}
		return tx.Omit("Groups").Create(user).Error
	})
}

func (s *UsersStore) FetchUser(ctx context.Context, id uint) (*model.User, error) {
	return s.fetch(ctx, "id = ?", id)
}

func (s *UsersStore) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.fetch(ctx, "username = ?", username)
}

func (s *UsersStore) fetch(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Groups.Permissions").
		Where(query, arg).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db *gorm.DB
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB) *GroupsStore {
	return &GroupsStore{db: db}
}

// EnsureGroup creates the group if needed and replaces its permissions.
func (s *GroupsStore) EnsureGroup(ctx context.Context, name string, perms []permission.Permission) (*model.Group, bool, error) {
	var group model.Group
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&group).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			group = model.Group{Name: name}
			if err := tx.Omit("Permissions").Create(&group).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		}

		if err := tx.Where("group_id = ?", group.ID).Delete(&model.GroupPermission{}).Error; err != nil {
			return err
		}

		group.Permissions = make([]model.GroupPermission, 0, len(perms))
		for _, p := range perms {
			group.Permissions = append(group.Permissions, model.GroupPermission{GroupID: group.ID, Permission: p})
		}
		if len(group.Permissions) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&group.Permissions).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &group, created, nil
}

func (s *GroupsStore) AddUserToGroup(ctx context.Context, userID uint, groupName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrUserNotFound
			}
			return err
		}

		var group model.Group
		if err := tx.Where("name = ?", groupName).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrGroupNotFound
			}
			return err
		}

		return tx.Model(&user).Association("Groups").Append(&group)
	})
}

func (s *GroupsStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	groups := []model.Group{}
	err := s.db.WithContext(ctx).Preload("Permissions").Order("id").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
