package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/config"
	"github.com/listenupapp/recipebox-server/internal/logger"
)

// ProvideImageStore provides the blob store holding recipe images.
func ProvideImageStore(i do.Injector) (blob.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := blob.Open(context.Background(), blob.Config{
		Driver: blob.Driver(cfg.Storage.Driver),
		Root:   cfg.Storage.Root,
		S3: blob.S3Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			PathStyle:       cfg.Storage.S3PathStyle,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	log.Info("Image storage initialized", "driver", st.Driver())
	return st, nil
}
