package starbind

import (
	"fmt"
	"math/big"
	"reflect"

	"go.starlark.net/starlark"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// miValueToStarlarkValue converts a value of the MI tree. Constants become
// strings, tuples become dicts and lists become lists. A list of results
// becomes a list of (name, value) tuples.
func miValueToStarlarkValue(v mi.Value) starlark.Value {
	switch v := v.(type) {
	case *mi.Const:
		if v == nil {
			return starlark.None
		}
		return starlark.String(v.Text())
	case *mi.Tuple:
		if v == nil {
			return starlark.None
		}
		if len(v.Results()) == 0 && len(v.Values()) > 0 {
			return valuesToStarlarkList(v.Values())
		}
		return resultsToStarlarkDict(v.Results())
	case *mi.List:
		if v == nil {
			return starlark.None
		}
		if len(v.Results()) > 0 {
			r := make([]starlark.Value, 0, len(v.Results()))
			for _, res := range v.Results() {
				r = append(r, starlark.Tuple{starlark.String(res.Name()), miValueToStarlarkValue(res.Value())})
			}
			return starlark.NewList(r)
		}
		return valuesToStarlarkList(v.Values())
	}
	return starlark.None
}

func valuesToStarlarkList(vs []mi.Value) *starlark.List {
	r := make([]starlark.Value, 0, len(vs))
	for _, v := range vs {
		r = append(r, miValueToStarlarkValue(v))
	}
	return starlark.NewList(r)
}

// resultsToStarlarkDict converts results into a dict, a name that appears
// more than once keeps its last value.
func resultsToStarlarkDict(results []*mi.Result) *starlark.Dict {
	d := starlark.NewDict(len(results))
	for _, res := range results {
		d.SetKey(starlark.String(res.Name()), miValueToStarlarkValue(res.Value()))
	}
	return d
}

func tokenToStarlarkValue(token int) starlark.Value {
	if token == mi.NoToken {
		return starlark.None
	}
	return starlark.MakeInt(token)
}

// recordToStarlarkValue converts a record into a dict with the keys kind,
// token, type, class, text and results, depending on the kind of record.
func recordToStarlarkValue(rec mi.Record) starlark.Value {
	d := starlark.NewDict(6)
	d.SetKey(starlark.String("kind"), starlark.String(rec.Kind().String()))
	d.SetKey(starlark.String("token"), tokenToStarlarkValue(rec.Token()))
	switch rec := rec.(type) {
	case *mi.ResultRecord:
		d.SetKey(starlark.String("class"), starlark.String(rec.Class().String()))
		d.SetKey(starlark.String("results"), resultsToStarlarkDict(rec.Results()))
	case *mi.AsyncRecord:
		d.SetKey(starlark.String("type"), starlark.String(rec.AsyncKind().String()))
		d.SetKey(starlark.String("class"), starlark.String(rec.Class()))
		d.SetKey(starlark.String("results"), resultsToStarlarkDict(rec.Results()))
	case *mi.StreamRecord:
		d.SetKey(starlark.String("type"), starlark.String(rec.StreamKind().String()))
		d.SetKey(starlark.String("text"), starlark.String(rec.Text()))
	}
	return d
}

// outputToStarlarkValue converts an Output into a dict. The record key
// holds the single record of an async or stream output, class and results
// are those of the result record.
func outputToStarlarkValue(out *mi.Output) starlark.Value {
	if out == nil {
		return starlark.None
	}
	d := starlark.NewDict(8)
	d.SetKey(starlark.String("prompt"), starlark.Bool(out.IsPrompt()))
	d.SetKey(starlark.String("token"), tokenToStarlarkValue(out.Token()))
	records := []starlark.Value{}
	for _, rec := range out.OOBRecords() {
		records = append(records, recordToStarlarkValue(rec))
	}
	d.SetKey(starlark.String("records"), starlark.NewList(records))
	if rr := out.ResultRecord(); rr != nil {
		d.SetKey(starlark.String("class"), starlark.String(rr.Class().String()))
		d.SetKey(starlark.String("results"), resultsToStarlarkDict(rr.Results()))
	} else {
		d.SetKey(starlark.String("class"), starlark.None)
	}
	if rec := out.Record(); rec != nil {
		d.SetKey(starlark.String("record"), recordToStarlarkValue(rec))
	}
	d.SetKey(starlark.String("console"), starlark.String(out.StreamText(mi.StreamConsole)))
	return d
}

// interfaceToStarlarkValue converts an interface{} variable (usually a
// decoded result) into a starlark.Value.
func (env *Env) interfaceToStarlarkValue(v interface{}) starlark.Value {
	switch v := v.(type) {
	case uint8:
		return starlark.MakeUint64(uint64(v))
	case uint16:
		return starlark.MakeUint64(uint64(v))
	case uint32:
		return starlark.MakeUint64(uint64(v))
	case uint64:
		return starlark.MakeUint64(v)
	case uintptr:
		return starlark.MakeUint64(uint64(v))
	case uint:
		return starlark.MakeUint64(uint64(v))
	case int8:
		return starlark.MakeInt64(int64(v))
	case int16:
		return starlark.MakeInt64(int64(v))
	case int32:
		return starlark.MakeInt64(int64(v))
	case int64:
		return starlark.MakeInt64(v)
	case int:
		return starlark.MakeInt64(int64(v))
	case bool:
		return starlark.Bool(v)
	case string:
		return starlark.String(v)
	case *big.Int:
		if v == nil {
			return starlark.None
		}
		return starlark.MakeBigInt(v)
	case mi.Value:
		return miValueToStarlarkValue(v)
	case *mi.Output:
		return outputToStarlarkValue(v)
	case nil:
		return starlark.None
	case error:
		return starlark.String(v.Error())
	default:
		vval := reflect.ValueOf(v)
		switch vval.Type().Kind() {
		case reflect.Ptr:
			if vval.IsNil() {
				return starlark.None
			}
			vval = vval.Elem()
			if vval.Type().Kind() == reflect.Struct {
				return structAsStarlarkValue{vval, env}
			}
		case reflect.Struct:
			return structAsStarlarkValue{vval, env}
		case reflect.Slice:
			if vval.IsNil() {
				return starlark.None
			}
			return sliceAsStarlarkValue{vval, env}
		}
		return starlark.String(fmt.Sprintf("%v", v))
	}
}

// reflectToStarlarkValue keeps addressable structs addressable so that
// their pointer methods stay visible as attributes.
func (env *Env) reflectToStarlarkValue(v reflect.Value) starlark.Value {
	if v.Kind() == reflect.Struct && v.CanAddr() {
		if _, isvalue := v.Addr().Interface().(mi.Value); !isvalue {
			return structAsStarlarkValue{v, env}
		}
	}
	return env.interfaceToStarlarkValue(v.Interface())
}

// sliceAsStarlarkValue converts a reflect.Value containing a slice
// into a starlark value.
// The public methods of sliceAsStarlarkValue implement the Indexable and
// Sequence starlark interfaces.
type sliceAsStarlarkValue struct {
	v   reflect.Value
	env *Env
}

var _ starlark.Indexable = sliceAsStarlarkValue{}
var _ starlark.Sequence = sliceAsStarlarkValue{}

func (v sliceAsStarlarkValue) Freeze() {
}

func (v sliceAsStarlarkValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("not hashable")
}

func (v sliceAsStarlarkValue) String() string {
	return fmt.Sprintf("%v", v.v)
}

func (v sliceAsStarlarkValue) Truth() starlark.Bool {
	return v.v.Len() != 0
}

func (v sliceAsStarlarkValue) Type() string {
	return v.v.Type().String()
}

func (v sliceAsStarlarkValue) Index(i int) starlark.Value {
	if i >= v.v.Len() {
		return nil
	}
	return v.env.reflectToStarlarkValue(v.v.Index(i))
}

func (v sliceAsStarlarkValue) Len() int {
	return v.v.Len()
}

func (v sliceAsStarlarkValue) Iterate() starlark.Iterator {
	return &sliceAsStarlarkValueIterator{0, v.v, v.env}
}

type sliceAsStarlarkValueIterator struct {
	cur int
	v   reflect.Value
	env *Env
}

func (it *sliceAsStarlarkValueIterator) Done() {
}

func (it *sliceAsStarlarkValueIterator) Next(p *starlark.Value) bool {
	if it.cur >= it.v.Len() {
		return false
	}
	*p = it.env.reflectToStarlarkValue(it.v.Index(it.cur))
	it.cur++
	return true
}

// structAsStarlarkValue converts any Go struct into a starlark.Value.
// The public methods of structAsStarlarkValue implement the
// starlark.HasAttrs interface.
// Exported fields are attributes, so are exported methods that take no
// argument and return a single value, for example Done and Issues of a
// decoded result.
type structAsStarlarkValue struct {
	v   reflect.Value
	env *Env
}

var _ starlark.HasAttrs = structAsStarlarkValue{}

func (v structAsStarlarkValue) Freeze() {
}

func (v structAsStarlarkValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("not hashable")
}

func (v structAsStarlarkValue) String() string {
	return fmt.Sprintf("%+v", v.v.Interface())
}

func (v structAsStarlarkValue) Truth() starlark.Bool {
	return true
}

func (v structAsStarlarkValue) Type() string {
	return v.v.Type().String()
}

func (v structAsStarlarkValue) Attr(name string) (starlark.Value, error) {
	if r, ok := v.methodAttr(name); ok {
		return r, nil
	}
	r := v.v.FieldByName(name)
	if r == (reflect.Value{}) || !r.CanInterface() {
		return starlark.None, fmt.Errorf("no field named %q in %s", name, v.v.Type())
	}
	return v.env.reflectToStarlarkValue(r), nil
}

func (v structAsStarlarkValue) method(name string) reflect.Value {
	if !v.v.CanAddr() {
		return reflect.Value{}
	}
	m := v.v.Addr().MethodByName(name)
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return reflect.Value{}
	}
	return m
}

func (v structAsStarlarkValue) methodAttr(name string) (starlark.Value, bool) {
	m := v.method(name)
	if !m.IsValid() {
		return nil, false
	}
	return v.env.interfaceToStarlarkValue(m.Call(nil)[0].Interface()), true
}

func (v structAsStarlarkValue) AttrNames() []string {
	typ := v.v.Type()
	r := make([]string, 0, typ.NumField()+1)
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).PkgPath == "" && !typ.Field(i).Anonymous {
			r = append(r, typ.Field(i).Name)
		}
	}
	if v.v.CanAddr() {
		ptyp := v.v.Addr().Type()
		for i := 0; i < ptyp.NumMethod(); i++ {
			if name := ptyp.Method(i).Name; v.method(name).IsValid() {
				r = append(r, name)
			}
		}
	}
	return r
}

// unmarshalStarlarkValue unmarshals a starlark.Value 'val' into a Go variable 'dst'.
// This works similarly to encoding/json.Unmarshal and similar functions,
// but instead of getting its input from a byte buffer, it uses a
// starlark.Value.
func unmarshalStarlarkValue(val starlark.Value, dst interface{}, path string) error {
	return unmarshalStarlarkValueIntl(val, reflect.ValueOf(dst), path)
}

func unmarshalStarlarkValueIntl(val starlark.Value, dst reflect.Value, path string) (err error) {
	defer func() {
		// catches reflect panics
		ierr := recover()
		if ierr != nil {
			err = fmt.Errorf("error setting argument %q to %s: %v", path, val, ierr)
		}
	}()

	converr := func(args ...string) error {
		if len(args) > 0 {
			return fmt.Errorf("error setting argument %q: can not convert %s to %s: %s", path, val, dst.Type().String(), args[0])
		}
		return fmt.Errorf("error setting argument %q: can not convert %s to %s", path, val, dst.Type().String())
	}

	if _, isnone := val.(starlark.NoneType); isnone {
		return nil
	}

	for dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}

	switch val := val.(type) {
	case starlark.Bool:
		dst.SetBool(bool(val))
	case starlark.Int:
		switch dst.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n, ok := val.Uint64()
			if !ok {
				return converr()
			}
			dst.SetUint(n)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, ok := val.Int64()
			if !ok {
				return converr()
			}
			dst.SetInt(n)
		default:
			return converr()
		}
	case starlark.Float:
		dst.SetFloat(float64(val))
	case starlark.String:
		dst.SetString(string(val))
	case *starlark.List:
		if dst.Kind() != reflect.Slice {
			return converr()
		}
		r := reflect.MakeSlice(dst.Type(), 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			cur := reflect.New(dst.Type().Elem())
			err := unmarshalStarlarkValueIntl(val.Index(i), cur, path)
			if err != nil {
				return err
			}
			r = reflect.Append(r, cur.Elem())
		}
		dst.Set(r)
	case *starlark.Dict:
		if dst.Kind() != reflect.Struct {
			return converr()
		}
		for _, k := range val.Keys() {
			if _, ok := k.(starlark.String); !ok {
				return converr(fmt.Sprintf("non-string key %q", k.String()))
			}
			fieldName := string(k.(starlark.String))
			dstfield := dst.FieldByName(fieldName)
			if dstfield == (reflect.Value{}) {
				return converr(fmt.Sprintf("unknown field %s", fieldName))
			}
			valfield, _, _ := val.Get(starlark.String(fieldName))
			err := unmarshalStarlarkValueIntl(valfield, dstfield, path+"."+fieldName)
			if err != nil {
				return err
			}
		}
	case structAsStarlarkValue:
		rv := val.v
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		dst.Set(rv)
	default:
		return converr()
	}
	return nil
}
