package core

import "context"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Direction returns the MongoDB sort direction (1 | -1).
func (ord DBOrdering) Direction() int {
	if ord.Ascending {
		return 1
	}
	return -1
}

// DB is a database handle that can be pinged and released.
type DB interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
