package firestore

import (
	"errors"

	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isDone(err error) bool {
	return errors.Is(err, iterator.Done)
}

// IsAlreadyExists reports whether a Create lost to an existing document.
func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// IsNotFound reports whether a document read found nothing.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
