package cloud

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/threads-poster/config"
)

// ProvideObjectStore builds the store selected by THREADS_STORAGE_PROVIDER.
func ProvideObjectStore(ctx context.Context, cfg *config.PosterConfig) (ObjectStore, error) {
	switch cfg.StorageProvider {
	case config.ProviderOCI:
		return ProvideOCIStore(cfg.Namespace, cfg.Region, cfg.Profile)
	case config.ProviderOCIS3:
		return ProvideOCIS3Store(cfg.Namespace, cfg.Region, cfg.Profile)
	case config.ProviderGCS:
		return ProvideGCSStore(ctx)
	case config.ProviderAzure:
		return ProvideAzureStore(cfg.AzureStorageAccount, cfg.AzureStorageAccessKey)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}
}
