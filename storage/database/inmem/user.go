package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func cloneUser(usr user.User) user.User {
	usr.Roles = copyStrings(usr.Roles)
	usr.WorkshopParticipations = copyStrings(usr.WorkshopParticipations)
	usr.PasswordHash = append([]byte(nil), usr.PasswordHash...)
	return usr
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, cloneUser(*u))
	}
	return users
}

func (repo *userRepository) emailTaken(email, excludedID string) bool {
	for _, usr := range repo.db.table {
		if usr.Email == email && usr.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(usr.Email, "") {
		return user.User{}, user.ErrEmailExists
	}
	if usr.ID == "" {
		usr.ID = newID()
	}
	if usr.WorkshopParticipations == nil {
		usr.WorkshopParticipations = []string{}
	}
	usr = cloneUser(usr)
	repo.db.table[usr.ID] = &usr
	return cloneUser(usr), nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.table[filter.ID]; ok && (filter.Email == "" || usr.Email == filter.Email) {
			return cloneUser(*usr), nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Email != "" {
		for _, usr := range repo.db.table {
			if usr.Email == filter.Email {
				return cloneUser(*usr), nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if len(filter.Roles) == 0 || hasAnyRole(usr, filter.Roles) {
			users = append(users, usr)
		}
	}
	sortUsers(users, orderings)
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, user.ErrEmailExists
	}
	usr = cloneUser(usr)
	repo.db.table[usr.ID] = &usr
	return cloneUser(usr), nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func hasAnyRole(usr user.User, roles []string) bool {
	for _, role := range roles {
		if usr.HasRole(role) {
			return true
		}
	}
	return false
}

// sortUsers sorts by orderings, then by creation date.
func sortUsers(users []user.User, orderings []core.DBOrdering) {
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareUsers(users[i], users[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

func compareUsers(a, b user.User, field string) int {
	switch field {
	case "firstName":
		return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
	case "lastName":
		return strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "city":
		return strings.Compare(a.City, b.City)
	case "createdAt":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updatedAt":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
