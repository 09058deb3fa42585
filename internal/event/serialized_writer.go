// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"fmt"
	"io"
	"sync"
)

// serializedWriter uses a lock to serialize all writes to its io.Writer
type serializedWriter struct {
	l *sync.Mutex
	w io.Writer
}

// Write uses a lock to serialize all writes
func (s *serializedWriter) Write(p []byte) (int, error) {
	const op = "event.(serializedWriter).Write"
	if s == nil {
		return 0, fmt.Errorf("%s: missing serialized writer: %w", op, ErrInvalidParameter)
	}
	if s.l == nil {
		return 0, fmt.Errorf("%s: missing lock: %w", op, ErrInvalidParameter)
	}
	if s.w == nil {
		return 0, fmt.Errorf("%s: missing writer: %w", op, ErrInvalidParameter)
	}
	s.l.Lock()
	defer s.l.Unlock()

	n, err := s.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
