// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"iter"
)

// Batched yields contiguous, size-balanced batches of items. The number of
// batches is the minimum needed so that no batch exceeds maxBatchSize, and
// sizes are then spread as evenly as integer division allows:
//
//	Batched([]int{1, 2, 3, 4, 5}, 2) // [1 2], [3 4], [5]
//
// An empty input or a batch size below one yields nothing.
func Batched[T any](items []T, maxBatchSize int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(items) == 0 || maxBatchSize < 1 {
			return
		}

		batchCount := (len(items) + maxBatchSize - 1) / maxBatchSize
		size := (len(items) + batchCount - 1) / batchCount

		for i := 0; i < len(items); i += size {
			if !yield(items[i:min(i+size, len(items))]) {
				return
			}
		}
	}
}

// ForEach yields one command per batch of items, each built by currying the
// base command with that batch's elements. It pairs with Parallel to run a
// command over a list of arguments concurrently:
//
//	for cmd, err := range shellkit.ForEach(ctx, echo, files, 10) { ... }
//
// Yielded errors come from tokenizing the batch elements; a batch size below
// one yields a single ErrInvalidBatchSize.
func ForEach[T any](ctx context.Context, base *Command, items []T, batchSize int) iter.Seq2[*Command, error] {
	return func(yield func(*Command, error) bool) {
		if batchSize < 1 {
			yield(nil, ErrInvalidBatchSize)
			return
		}

		for batch := range Batched(items, batchSize) {
			args := make([]any, len(batch))
			for i, item := range batch {
				args[i] = item
			}

			cmd, err := base.With(ctx, args...)
			if !yield(cmd, err) {
				return
			}
		}
	}
}
