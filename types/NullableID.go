package types

import "bytes"

// NullableID distinguishes an absent JSON key from an explicit null:
// Set is true only when the key was present in the payload.
type NullableID struct {
	Set   bool
	Valid bool
	ID    SnowflakeID
}

func NewNullableID(id *SnowflakeID) NullableID {
	if id == nil {
		return NullableID{Set: true}
	}
	return NullableID{Set: true, Valid: true, ID: *id}
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		n.ID = 0
		return nil
	}
	if err := n.ID.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.ID.MarshalJSON()
}

// Ptr returns the referenced id, or nil when the value is null or unset.
func (n NullableID) Ptr() *SnowflakeID {
	if !n.Valid {
		return nil
	}
	return n.ID.Ptr()
}
