package engine

import "context"

// Remove deletes (partition, key) and cascades to every descendant
// reachable through the parent_key_i columns, at any depth.
func Remove(ctx context.Context, e *Engine, partition, key string) error {
	if err := e.checkActive(ctx, "remove"); err != nil {
		return err
	}
	if partition == "" || key == "" {
		return invalidArg("remove", "partition and key must be non-empty")
	}
	partition, key = e.truncate(partition, key)

	if _, err := cascadeDelete(ctx, e, partition, key); err != nil {
		e.recordError("remove", KindBackend, err)
	}
	return nil
}

// cascadeDelete deletes (partition, key) and recurses onto every
// descendant reachable through the parent_key_i columns. The backend's
// delete_entry command only reaches key's direct children in one
// statement, so cascadeDelete fetches those children first (before they
// can be deleted out from under it) and recurses on each, reaching full
// transitive closure regardless of chain depth.
func cascadeDelete(ctx context.Context, e *Engine, partition, key string) (int64, error) {
	children, err := e.backend.ChildKeys(ctx, partition, key)
	if err != nil {
		return 0, err
	}
	total, err := e.backend.DeleteEntry(ctx, partition, key)
	if err != nil {
		return total, err
	}
	for _, child := range children {
		n, err := cascadeDelete(ctx, e, partition, child)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Clear deletes rows matching the optional partition and expiry mode,
// and returns the number of rows removed. Under ConsiderExpiry it cascades
// exactly as Remove does: a non-expired child of an expired parent is
// removed along with it, not left behind.
func Clear(ctx context.Context, e *Engine, partition *string, mode ExpiryMode) (int64, error) {
	if err := e.checkActive(ctx, "clear"); err != nil {
		return 0, err
	}
	if mode == IgnoreExpiry {
		n, err := e.backend.DeleteEntries(ctx, partition, false, 0)
		if err != nil {
			e.recordError("clear", KindBackend, err)
			return 0, nil
		}
		return n, nil
	}

	rows, err := e.backend.PeekEntries(ctx, partition)
	if err != nil {
		e.recordError("clear", KindBackend, err)
		return 0, nil
	}
	nowUnix := now(e.clock).Unix()
	var total int64
	for _, r := range rows {
		if r.UTCExpiry >= nowUnix {
			continue
		}
		n, err := cascadeDelete(ctx, e, r.Partition, r.Key)
		if err != nil {
			e.recordError("clear", KindBackend, err)
			return total, nil
		}
		total += n
	}
	return total, nil
}
