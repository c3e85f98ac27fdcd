package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	errs := make([]string, 0)
	GetStructErrorTxt4UnsetFields(cfg, &errs)
	if len(errs) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(errs, ", "))
	}
	return
}

// GetStructErrorTxt4UnsetFields will reflect over interface i and append to errTags the errorTxt tag of every
// exported field tagged mandatory:"yes" that holds its zero value.
// Nested structs, pointers to structs and maps of structs are walked too.
func GetStructErrorTxt4UnsetFields(i interface{}, errTags *[]string) {
	val := reflect.ValueOf(i)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ {
		sf := typ.Field(idx)
		if sf.PkgPath != "" { // unexported
			continue
		}
		f := val.Field(idx)
		if sf.Tag.Get("mandatory") == "yes" && f.IsZero() {
			*errTags = append(*errTags, sf.Tag.Get("errorTxt"))
			continue
		}
		switch f.Kind() {
		case reflect.Struct:
			GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
		case reflect.Ptr:
			if !f.IsNil() && f.Elem().Kind() == reflect.Struct {
				GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
			}
		case reflect.Map:
			for _, k := range f.MapKeys() {
				if mv := f.MapIndex(k); mv.Kind() == reflect.Struct {
					GetStructErrorTxt4UnsetFields(mv.Interface(), errTags)
				}
			}
		}
	}
}
