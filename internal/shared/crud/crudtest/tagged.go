package crudtest

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"cinenacional-backend/internal/shared/crud"
)

// NewTaggedStore returns a Store whose rows are read and written through
// the `db` struct tags of T, the same names the SQL store uses.
func NewTaggedStore[T crud.Entity]() *Store[T] {
	return NewStore(
		func(id int64, fields map[string]any) T {
			var row T
			v := reflect.ValueOf(&row).Elem()
			assignTagged(v, "id", id)
			for name, value := range fields {
				assignTagged(v, name, value)
			}
			return row
		},
		func(row *T, fields map[string]any) {
			v := reflect.ValueOf(row).Elem()
			for name, value := range fields {
				assignTagged(v, name, value)
			}
		},
		func(row T, name string) string {
			fv, ok := taggedField(reflect.ValueOf(row), name)
			if !ok {
				return ""
			}
			return fieldString(fv)
		},
	)
}

func taggedField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("db"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func assignTagged(v reflect.Value, name string, value any) {
	fv, ok := taggedField(v, name)
	if !ok || !fv.CanSet() {
		return
	}
	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		fv.Set(reflect.Zero(fv.Type()))
		return
	}
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if fv.Kind() == reflect.Pointer {
		nv := reflect.New(fv.Type().Elem())
		setScalar(nv.Elem(), rv)
		fv.Set(nv)
		return
	}
	setScalar(fv, rv)
}

func setScalar(dst, src reflect.Value) {
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.String:
		dst.SetString(fmt.Sprint(src.Interface()))
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	}
}

func fieldString(fv reflect.Value) string {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	if t, ok := fv.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(fv.Interface())
}
