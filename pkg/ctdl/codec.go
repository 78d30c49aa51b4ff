package ctdl

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Method-free mirrors of the wire types, used to reach the default codec.
type (
	targetFields     Target
	profileFields    ConditionProfile
	credentialFields Credential
)

var (
	targetKeys     = jsonKeys(targetFields{})
	profileKeys    = jsonKeys(profileFields{})
	credentialKeys = jsonKeys(credentialFields{})
)

// MarshalJSON writes the modeled fields followed by any preserved extras.
func (t Target) MarshalJSON() ([]byte, error) {
	fields := targetFields(t)
	return marshalFlat(&fields, nil, t.Extra)
}

// UnmarshalJSON reads the modeled fields and keeps everything else in Extra.
func (t *Target) UnmarshalJSON(data []byte) error {
	var fields targetFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, targetKeys)
	if err != nil {
		return err
	}
	*t = Target(fields)
	t.Extra = nonEmpty(extra)
	return nil
}

// MarshalJSON flattens the typed sub-lists into named fields.
func (p ConditionProfile) MarshalJSON() ([]byte, error) {
	fields := profileFields(p)
	named := make(map[string]any, len(p.Targets))
	for tp, entries := range p.Targets {
		if len(entries) > 0 {
			named[string(tp)] = entries
		}
	}
	return marshalFlat(&fields, named, p.Extra)
}

// UnmarshalJSON lifts known sub-list fields into Targets. A sub-list that
// does not decode as a list of targets is kept verbatim in Extra.
func (p *ConditionProfile) UnmarshalJSON(data []byte) error {
	var fields profileFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, profileKeys)
	if err != nil {
		return err
	}
	*p = ConditionProfile(fields)
	p.Targets = nil

	for _, tp := range targetProperties {
		raw, ok := extra[string(tp)]
		if !ok {
			continue
		}
		var entries []Target
		if err := json.Unmarshal(raw, &entries); err != nil {
			continue
		}
		delete(extra, string(tp))
		p.SetEntries(tp, entries)
	}
	p.Extra = nonEmpty(extra)
	return nil
}

// MarshalJSON flattens relationship properties into named fields.
func (c Credential) MarshalJSON() ([]byte, error) {
	fields := credentialFields(c)
	named := make(map[string]any, len(c.Relations))
	for p, profiles := range c.Relations {
		if len(profiles) > 0 {
			named[string(p)] = profiles
		}
	}
	return marshalFlat(&fields, named, c.Extra)
}

// UnmarshalJSON lifts known relationship properties into Relations. Null or
// missing properties are treated as empty.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var fields credentialFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, credentialKeys)
	if err != nil {
		return err
	}
	*c = Credential(fields)
	c.Relations = nil

	for _, p := range allProperties {
		raw, ok := extra[string(p)]
		if !ok {
			continue
		}
		var profiles []ConditionProfile
		if err := json.Unmarshal(raw, &profiles); err != nil {
			continue
		}
		delete(extra, string(p))
		c.SetProfiles(p, profiles)
	}
	c.Extra = nonEmpty(extra)
	return nil
}

func marshalFlat(known any, named map[string]any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(named) == 0 && len(extra) == 0 {
		return base, nil
	}

	obj := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	for k, v := range named {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

// extraFields returns the object members whose names are not in known.
// Names are compared case-insensitively, as encoding/json matches them.
func extraFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k := range obj {
		if _, ok := known[strings.ToLower(k)]; ok {
			delete(obj, k)
		}
	}
	return obj, nil
}

func nonEmpty(m map[string]json.RawMessage) map[string]json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	return m
}

func jsonKeys(v any) map[string]struct{} {
	t := reflect.TypeOf(v)
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[strings.ToLower(name)] = struct{}{}
	}
	return keys
}
