package errors

import "fmt"

// Wrap prefixes err with msg while keeping the chain intact, so
// errors.Is against the sentinels in this package still matches.
// A nil err returns nil, which makes the common return pattern safe:
//
//	return errors.Wrap(store.SaveTask(ctx, t), "persist task")
//
// Wrap once, at the boundary where the error leaves a package.
// Re-wrapping the same error at every level buries the cause.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is the formatted variant, for context that carries an ID:
//
//	return errors.Wrapf(err, "resolve review item %s", itemID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
