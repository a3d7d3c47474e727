// Package models defines the data shared by the client-side packages.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role is the access tier of an identity. Only RoleUser and RoleAdmin are
// known; any other value is carried but never authorizes anything.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Identity is the authenticated user's profile.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts both the canonical shape and the raw user document
// the service returns ("_id"/"user_id" for the id, "username" for the name).
func (i *Identity) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		MongoID  json.RawMessage `json:"_id"`
		UserID   json.RawMessage `json:"user_id"`
		Name     string          `json:"name"`
		Username string          `json:"username"`
		Email    string          `json:"email"`
		Role     Role            `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*i = Identity{Name: raw.Name, Email: raw.Email, Role: raw.Role}
	if i.Name == "" {
		i.Name = raw.Username
	}
	for _, candidate := range []json.RawMessage{raw.ID, raw.MongoID, raw.UserID} {
		id, err := idString(candidate)
		if err != nil {
			return err
		}
		if id != "" {
			i.ID = id
			break
		}
	}
	return nil
}

// idString renders a string, number or {"$oid": "..."} id as a string.
func idString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case map[string]any:
		if oid, ok := id["$oid"].(string); ok {
			return oid, nil
		}
	}
	return "", fmt.Errorf("unsupported id %s", string(raw))
}
