package services

import (
	"context"

	"menu-app/hierarchy"
	"menu-app/models"
	"menu-app/types"

	"github.com/sirupsen/logrus"
)

// treeReader materializes menu forests, going through the hierarchy cache
// first. Both services share one so their cache keys line up.
type treeReader struct {
	repo  Repository
	cache HierarchyCache
	log   logrus.FieldLogger
}

func (r *treeReader) forest(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	if cached, ok, err := r.cache.GetHierarchy(ctx, menuID); err != nil {
		r.log.WithError(err).WithField("menu_id", menuID.String()).Warn("hierarchy cache read failed")
	} else if ok {
		recordCacheRequest(true)
		return cached, nil
	}
	recordCacheRequest(false)

	// The generation must be read before the rows: a mutation committed while
	// they load advances it and the forest below is not cached.
	generation, genErr := r.cache.Generation(ctx, menuID)
	if genErr != nil {
		r.log.WithError(genErr).WithField("menu_id", menuID.String()).Warn("hierarchy cache generation read failed")
	}

	items, err := r.repo.FindMenuItemsByMenu(ctx, menuID)
	if err != nil {
		return nil, Unavailable(err, "failed to load menu items")
	}
	forest := hierarchy.Build(items, 0)

	if genErr == nil {
		if err := r.cache.SetHierarchy(ctx, menuID, generation, forest); err != nil {
			r.log.WithError(err).WithField("menu_id", menuID.String()).Warn("hierarchy cache write failed")
		}
	}
	return forest, nil
}

func (r *treeReader) invalidate(ctx context.Context, menuID types.SnowflakeID) {
	if err := r.cache.Invalidate(ctx, menuID); err != nil {
		r.log.WithError(err).WithField("menu_id", menuID.String()).Warn("hierarchy cache invalidation failed")
	}
}

// reject logs a refused or failed mutation, counts it and hands the error back.
func (r *treeReader) reject(operation string, err error, fields logrus.Fields) error {
	recordMutation(operation, err)
	entry := r.log.WithFields(fields).WithField("operation", operation).WithError(err)
	if IsUnavailable(err) {
		entry.Error("menu mutation failed")
	} else {
		entry.Info("menu mutation rejected")
	}
	return err
}
