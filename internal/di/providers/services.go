package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/recipebox-server/internal/auth"
	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/logger"
	"github.com/listenupapp/recipebox-server/internal/service"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideReconciler provides the tag and ingredient reconciler.
func ProvideReconciler(i do.Injector) (*service.Reconciler, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewReconciler(log.Logger), nil
}

// ProvideUserService provides the account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	images := do.MustInvoke[blob.Store](i)
	reconciler := do.MustInvoke[*service.Reconciler](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, images, reconciler, v, log.Logger), nil
}

// ProvideLabelService provides the tag and ingredient service.
func ProvideLabelService(i do.Injector) (*service.LabelService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLabelService(storeHandle.Store, v, log.Logger), nil
}
