package session

import (
	"context"

	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/logging"
)

// LockedConfigKey marks an item as protected from deletion when its config
// holds true under this key.
const LockedConfigKey = "locked"

// LockedGuard refuses deletes of locked items.
func LockedGuard(logger logging.Logger) builder.BeforeDeleteHook {
	if logger == nil {
		logger = logging.Discard{}
	}
	return func(_ context.Context, dc builder.DeleteContext) (bool, error) {
		if locked, _ := dc.Item.Config[LockedConfigKey].(bool); locked {
			logger.Infof("refusing to delete locked item %s", dc.ItemID)
			return false, nil
		}
		return true, nil
	}
}
