package service

import (
	"errors"

	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

// storeError classifies a repository failure. A miss becomes NotFound with
// the given message; anything else is an upstream failure of the store.
func storeError(notFoundMsg string, err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return shared.NotFound(notFoundMsg)
	}
	return shared.Upstream("store unavailable", err)
}

func intPtr(v int) *int {
	return &v
}
