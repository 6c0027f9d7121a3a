package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// maxWorkOrderIDAttempts bounds the uniqueness retry loop
const maxWorkOrderIDAttempts = 5

// workOrderIDChecker is the slice of the cart store the generator needs
type workOrderIDChecker interface {
	WorkOrderIDExists(ctx context.Context, workOrderID string) (bool, error)
}

// GenerateWorkOrderID produces a fresh human-readable work order ID,
// retrying on collision up to a fixed bound. When uniqueness cannot be
// established within the bound it fails cleanly with
// ErrWorkOrderIDExhausted and no record is created.
func GenerateWorkOrderID(ctx context.Context, store workOrderIDChecker) (string, error) {
	// The top-level rand functions are safe for concurrent use; handlers
	// and worker sweeps generate IDs from multiple goroutines.
	for attempt := 0; attempt < maxWorkOrderIDAttempts; attempt++ {
		candidate := fmt.Sprintf("WO-%s-%04d",
			time.Now().Format("20060102"),
			rand.Intn(10000))

		exists, err := store.WorkOrderIDExists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "failed to check work order ID uniqueness")
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrWorkOrderIDExhausted
}
