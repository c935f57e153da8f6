package uid

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

// UID generates unique, roughly time-ordered identifier.
type UID interface {
	NextID() (uint64, error)
}

var _ UID = (*sonyflake.Sonyflake)(nil)

// DefaultStartTime is the epoch of every generated id. Changing it may produce duplicate id.
var DefaultStartTime = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// NewSonyflake return sonyflake generator using DefaultStartTime.
func NewSonyflake() (*sonyflake.Sonyflake, error) {
	gen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: DefaultStartTime,
	})

	if gen == nil {
		return nil, fmt.Errorf("uid generator is nil, machine id may not be resolved")
	}

	return gen, nil
}

// NextInt64 is a helper to get next id as int64, because database column is signed bigint.
func NextInt64(gen UID) (int64, error) {
	id, err := gen.NextID()
	if err != nil {
		return 0, fmt.Errorf("cannot get next id: %w", err)
	}

	return int64(id), nil
}
