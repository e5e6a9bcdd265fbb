package main

import (
	"context"
	"log/slog"

	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/config"
	"github.com/Veraticus/catalog-imager/internal/imagery"
	"github.com/Veraticus/catalog-imager/internal/storage"
	"github.com/spf13/viper"
)

// openStore connects to the configured catalog database.
func openStore(ctx context.Context, v *viper.Viper) (*storage.Store, error) {
	opts := config.Connection(v)

	store, err := storage.Open(ctx, opts, config.Schema(v))
	if err != nil {
		return nil, common.NewUserError("Could not connect to the catalog database", err)
	}

	common.LogInfo("Connected to database", common.Fields{
		"driver": store.Kind(),
		"name":   opts.Name,
	})
	return store, nil
}

// closeStore closes store and logs the outcome.
func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database connection", "error", err)
		return
	}
	slog.Info("Database connection closed")
}

// loadImagery builds the pool set and classifier from configuration.
func loadImagery(v *viper.Viper) (*imagery.PoolSet, *imagery.Classifier, error) {
	pools, err := config.Pools(v)
	if err != nil {
		return nil, nil, err
	}
	classifier, err := config.Classifier(v, pools)
	if err != nil {
		return nil, nil, err
	}
	return pools, classifier, nil
}
