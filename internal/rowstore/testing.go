package rowstore

import (
	"fmt"
	"sync"
)

// Memory is an in-memory Backend used by tests and by anything that
// wants row-store semantics without a remote medium.
type Memory struct {
	mu   sync.Mutex
	rows []Row
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// AppendRow adds a row at the end.
func (m *Memory) AppendRow(row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, cloneRow(row))
	return nil
}

// AllRows returns a copy of every row in order.
func (m *Memory) AllRows() ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

// UpdateRow overwrites the row at pos.
func (m *Memory) UpdateRow(pos int, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.rows) {
		return errOutOfRange(pos, len(m.rows))
	}
	m.rows[pos] = cloneRow(row)
	return nil
}

// DeleteRow removes the row at pos.
func (m *Memory) DeleteRow(pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.rows) {
		return errOutOfRange(pos, len(m.rows))
	}
	m.rows = append(m.rows[:pos], m.rows[pos+1:]...)
	return nil
}

func errOutOfRange(pos, n int) error {
	return fmt.Errorf("row %d out of range (have %d rows)", pos, n)
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	copy(out, row)
	return out
}
