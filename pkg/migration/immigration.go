package migration

// Immigration is an interface to run migration Up or Down.
// Up means running all queries to latest version,
// Down means rollback to Down queries.
type Immigration interface {
	Up() error
	Down() error

	// Version returns the last applied version, zero when nothing applied yet.
	Version() (version uint, dirty bool, err error)

	Close() error
}
