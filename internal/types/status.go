package types

// Status is the lifecycle status of any persisted record. Soft deletes flip
// the record to StatusArchived or StatusDeleted instead of removing the row.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}
