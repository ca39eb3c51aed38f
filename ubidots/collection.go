package ubidots

import (
	"encoding/json"
	"fmt"
)

type collectionValue struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

// Collection is a batch of (variable, value) pairs uploaded in one request.
//
// Its capacity is fixed at creation. A Collection is not goroutine-safe.
type Collection struct {
	values   []collectionValue
	capacity int
}

// NewCollection creates an empty Collection holding at most capacity values.
func NewCollection(capacity int) *Collection {
	if capacity < 0 {
		capacity = 0
	}

	return &Collection{
		values:   make([]collectionValue, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a value for variableID.
// It returns ErrCollectionFull once Len reaches Cap.
func (c *Collection) Add(variableID string, value float64) error {
	if variableID == "" {
		return ErrEmptyVariableID
	}
	if len(c.values) >= c.capacity {
		return fmt.Errorf("%w: capacity %d", ErrCollectionFull, c.capacity)
	}

	c.values = append(c.values, collectionValue{Variable: variableID, Value: value})

	return nil
}

// Len returns the number of values added.
func (c *Collection) Len() int { return len(c.values) }

// Cap returns the declared capacity.
func (c *Collection) Cap() int { return c.capacity }

// Reset empties the collection, keeping its capacity.
func (c *Collection) Reset() { c.values = c.values[:0] }

// MarshalJSON encodes the collection as a JSON array; an empty collection is "[]".
func (c *Collection) MarshalJSON() ([]byte, error) {
	if len(c.values) == 0 {
		return []byte("[]"), nil
	}

	return json.Marshal(c.values)
}
