package errors

import stdErrors "errors"

// Repository sentinels shared by the gorm and Firestore stores.
var (
	ErrNotFound  = stdErrors.New("record not found")
	ErrDuplicate = stdErrors.New("record already exists")
)
