package service

import (
	"errors"

	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// translateStoreError maps store sentinels to domain errors. what names the
// entity in the message ("recipe", "user", ...). Other errors pass through.
func translateStoreError(err error, what string) error {
	var domainErr *domainerrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(what + " already exists").WithCause(err)
	case errors.Is(err, store.ErrReferenceMissing):
		// The only dangling reference a request can produce is its own
		// deleted account.
		return domainerrors.Unauthorized("account no longer exists").WithCause(err)
	case errors.Is(err, store.ErrReconcileMiss):
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "internal error")
	}
	return err
}
