// Package stremio models the pieces of the Stremio addon protocol the
// bootstrapper touches: addon manifests, the account addon collection
// and user-imported custom addons.
package stremio

import "encoding/json"

// Manifest represents a Stremio addon manifest. Only the fields the
// bootstrapper reads or rewrites are typed; everything else an addon
// ships in its manifest is preserved verbatim in Extra so installing
// the addon does not strip capabilities we do not know about.
type Manifest struct {
	ID          string
	Version     string
	Name        string
	Description string

	Extra map[string]json.RawMessage
}

func (m *Manifest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	take := func(key string, dst *string) {
		if raw, ok := fields[key]; ok {
			if json.Unmarshal(raw, dst) == nil {
				delete(fields, key)
			}
		}
	}
	take("id", &m.ID)
	take("version", &m.Version)
	take("name", &m.Name)
	take("description", &m.Description)

	if len(fields) > 0 {
		m.Extra = fields
	}
	return nil
}

func (m Manifest) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(m.Extra)+4)
	for k, v := range m.Extra {
		fields[k] = v
	}
	put := func(key, val string) {
		raw, err := json.Marshal(val)
		if err == nil {
			fields[key] = raw
		}
	}
	put("id", m.ID)
	put("version", m.Version)
	put("name", m.Name)
	put("description", m.Description)
	return json.Marshal(fields)
}

// Clone returns an independent deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	out := *m
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			raw := make(json.RawMessage, len(v))
			copy(raw, v)
			out.Extra[k] = raw
		}
	}
	return &out
}
