package services

import (
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

// storageError passes through errors that already carry a kind (not found,
// duplicate, ...) and reports anything else from the store as Unavailable.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.KindOf(err) != apperrors.KindInternal {
		return err
	}
	return apperrors.NewUnavailableError(op, err)
}
