package merge

import "errors"

// MergeError reports a merge that is structurally impossible. The user has to
// change the data before the merge can be attempted again.
type MergeError struct {
	msg string
	err error
}

func newMergeError(msg string) *MergeError {
	return &MergeError{msg: msg}
}

func (e *MergeError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *MergeError) Unwrap() error {
	return e.err
}

func IsMergeError(err error) bool {
	var mergeErr *MergeError
	return errors.As(err, &mergeErr)
}

var (
	errSameObject     = newMergeError("an object cannot be merged with itself")
	errSpouses        = newMergeError("spouses cannot be merged; break the relationship between them first")
	errParentChild    = newMergeError("a parent and child cannot be merged; break the relationship between them first")
	errSelfParent     = newMergeError("a parent should not be a child of itself")
	errMissingPhoenix = newMergeError(`when merging people where one person doesn't exist, that "person" must be the person that will be deleted`)
	errEnclosedPlace  = newMergeError("a place cannot be merged with a place that directly encloses it")
)
