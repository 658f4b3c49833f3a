// Package envconf populates configuration structs from environment
// variables. Fields are bound with an `env:"NAME"` tag; a `default:` tag
// makes the variable optional. Untagged struct fields are walked
// recursively.
package envconf

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

var (
	ErrMissingRequired = errors.New("missing required environment variable")
	ErrUnsupportedType = errors.New("unsupported field type")
)

var durationType = reflect.TypeOf(time.Duration(0))

func Load(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a non-nil pointer to a struct")
	}

	return loadStruct(v.Elem())
}

func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)

		if !sf.IsExported() {
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" || name == "-" {
			err := descend(fv)
			if err != nil {
				return fmt.Errorf("field %q: %w", sf.Name, err)
			}

			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok {
			raw, ok = sf.Tag.Lookup("default")
			if !ok {
				return fmt.Errorf("%w: %s (field %q)", ErrMissingRequired, name, sf.Name)
			}
		}

		err := assign(fv, raw)
		if err != nil {
			return fmt.Errorf("parse %s for field %q: %w", name, sf.Name, err)
		}
	}

	return nil
}

// descend recurses into untagged nested structs, allocating through nil
// pointers. Non-struct untagged fields are left alone.
func descend(fv reflect.Value) error {
	switch {
	case fv.Kind() == reflect.Struct && fv.Type() != durationType:
		return loadStruct(fv)
	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		return loadStruct(fv.Elem())
	default:
		return nil
	}
}

//nolint:cyclop
func assign(fv reflect.Value, raw string) error {
	if !fv.CanSet() {
		return ErrUnsupportedType
	}

	if fv.CanAddr() {
		u, ok := fv.Addr().Interface().(encoding.TextUnmarshaler)
		if ok {
			return u.UnmarshalText([]byte(raw))
		}
	}

	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		return assign(fv.Elem(), raw)
	}

	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}

		fv.SetInt(int64(d))

		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}

		fv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}

		fv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return err
		}

		fv.SetFloat(f)
	default:
		return ErrUnsupportedType
	}

	return nil
}
