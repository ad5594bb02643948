package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"leadscore_backend/platform/validator"
)

// decodeBody fills dst as far as the payload allows. Each mistyped value is
// returned as its own field error; err is only set for malformed JSON.
func decodeBody(body []byte, dst any) ([]validator.FieldError, error) {
	err := json.Unmarshal(body, dst)
	if err == nil {
		return nil, nil
	}
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return nil, err
	}

	fields := typeErrors(body, reflect.TypeOf(dst).Elem(), "")
	if len(fields) == 0 {
		fields = []validator.FieldError{typeFieldError(typeErr.Field, typeErr.Type)}
	}
	return fields, nil
}

// typeErrors decodes each member of the object raw separately against the
// struct type t, descending into nested objects and arrays.
func typeErrors(raw []byte, t reflect.Type, prefix string) []validator.FieldError {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return []validator.FieldError{typeFieldError(prefix, t)}
	}

	var out []validator.FieldError
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := jsonName(sf)
		member, ok := members[name]
		if name == "" || !ok {
			continue
		}
		out = append(out, valueTypeErrors(member, sf.Type, joinPath(prefix, name))...)
	}
	return out
}

func valueTypeErrors(raw json.RawMessage, t reflect.Type, path string) []validator.FieldError {
	if err := json.Unmarshal(raw, reflect.New(t).Interface()); err == nil {
		return nil
	}

	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case base.Kind() == reflect.Struct && bytes.HasPrefix(trimmed, []byte("{")):
		return typeErrors(raw, base, path)
	case base.Kind() == reflect.Slice && bytes.HasPrefix(trimmed, []byte("[")):
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			break
		}
		var out []validator.FieldError
		for i, item := range items {
			out = append(out, valueTypeErrors(item, base.Elem(), fmt.Sprintf("%s[%d]", path, i))...)
		}
		return out
	}
	return []validator.FieldError{typeFieldError(path, t)}
}

func typeFieldError(path string, t reflect.Type) validator.FieldError {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return validator.FieldError{
		Field:   path,
		Rule:    "type",
		Param:   t.String(),
		Message: "must be of type " + t.String(),
	}
}

func jsonName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	}
	return name
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// mergeFieldErrors keeps the first entry reported for each field.
func mergeFieldErrors(lists ...[]validator.FieldError) []validator.FieldError {
	seen := map[string]bool{}
	var out []validator.FieldError
	for _, list := range lists {
		for _, fe := range list {
			if seen[fe.Field] {
				continue
			}
			seen[fe.Field] = true
			out = append(out, fe)
		}
	}
	return out
}
