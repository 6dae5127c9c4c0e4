// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// errClosed is the panic value for access after Close.
const errClosed = "secret: read from closed buffer"

// Buffer is an mmap-backed, mlocked region holding one secret. It must not
// be copied. Access after Close panics.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// New allocates a zero-filled buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}
	return &Buffer{data: data}, nil
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, errors.New("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret. The slice aliases the mmap region and is
// invalid after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic(errClosed)
	}
	return b.data
}

// Len returns the secret's length. It is safe after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close zeroes, unlocks and unmaps the region. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)
	var errs []error
	if err := unix.Munlock(b.data); err != nil {
		errs = append(errs, fmt.Errorf("secret: munlock: %w", err))
	}
	if err := unix.Munmap(b.data); err != nil {
		errs = append(errs, fmt.Errorf("secret: munmap: %w", err))
	}
	b.data = nil
	return errors.Join(errs...)
}

// Zero overwrites data with zeroes.
func Zero(data []byte) {
	clear(data)
}
