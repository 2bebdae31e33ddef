package engine

import (
	"errors"
	"fmt"
)

// IntegrityError indicates a query result that references a dataset
// key with no matching record in a related collection. It fails the
// single query execution explicitly instead of producing a partially
// populated row; prior schema and prior results remain valid.
type IntegrityError struct {
	Collection string // the collection the record was expected in
	Key        string // the dangling key
	Referent   string // the record holding the dangling reference
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity fault: %s references %s %q which does not exist",
		e.Referent, e.Collection, e.Key)
}

// IsIntegrityError returns true if err is a data integrity fault.
func IsIntegrityError(err error) bool {
	var integrityErr *IntegrityError
	return errors.As(err, &integrityErr)
}
