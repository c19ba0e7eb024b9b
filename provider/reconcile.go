package provider

import "ipset-keeper/utils"

// Reconcile computes the membership changes turning current into desired.
// Both results are sorted; toAdd never intersects current and toRemove never intersects desired.
func Reconcile(current, desired []string) (toAdd []string, toRemove []string) {
	toRemove = utils.StringSliceSubtract(current, desired)
	toAdd = utils.StringSliceSubtract(desired, current)
	return toAdd, toRemove
}
