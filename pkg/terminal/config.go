package terminal

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-delve/gdbmi/pkg/config"
	"github.com/go-delve/gdbmi/pkg/mi"
)

func configureCmd(t *Term, ctx callContext, args string) error {
	switch args {
	case "-list":
		return configureList(t)
	case "-save":
		return config.SaveConfig(t.conf)
	case "":
		return fmt.Errorf("wrong number of arguments to \"config\"")
	default:
		return configureSet(t, args)
	}
}

// configField is a field of config.Config, named by its yaml key.
type configField struct {
	name  string
	value reflect.Value
}

func configFields(conf *config.Config) []configField {
	v := reflect.ValueOf(conf).Elem()
	fields := make([]configField, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("yaml")
		if comma := strings.IndexByte(name, ','); comma >= 0 {
			name = name[:comma]
		}
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, configField{name, v.Field(i)})
	}
	return fields
}

func configureList(t *Term) error {
	w := tabwriter.NewWriter(t.stdout, 0, 8, 1, ' ', 0)
	for _, f := range configFields(t.conf) {
		v := f.value
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				fmt.Fprintf(w, "%s\t<not defined>\n", f.name)
				continue
			}
			v = v.Elem()
		}
		fmt.Fprintf(w, "%s\t%v\n", f.name, v)
	}
	return w.Flush()
}

func configureSet(t *Term, args string) error {
	v := split2PartsBySpace(args)
	name := v[0]
	var rest string
	if len(v) == 2 {
		rest = v[1]
	}

	if name == "alias" {
		return configureSetAlias(t, rest)
	}

	var field reflect.Value
	for _, f := range configFields(t.conf) {
		if f.name == name {
			field = f.value
			break
		}
	}

	switch {
	case !field.IsValid():
		return fmt.Errorf("%q is not a configuration parameter", name)
	case field.Kind() == reflect.Map && field.Type().Elem().Kind() == reflect.Int:
		return configureSetRecordColor(t, field, rest)
	}

	if err := setConfigValue(field, name, rest); err != nil {
		return err
	}

	switch name {
	case "oob-window", "stream-window", "parse-cache-size":
		if n := len(t.asm.Pending()); n > 0 {
			fmt.Fprintf(t.stdout, "%d pending records discarded\n", n)
		}
		t.asm = mi.NewAssembler(t.conf.AssemblerConfig())
	}
	return nil
}

// setConfigValue parses arg into field, allocating it if field is a
// pointer. Numbers must not be negative.
func setConfigValue(field reflect.Value, name, arg string) error {
	dst := field
	if field.Kind() == reflect.Ptr {
		dst = reflect.New(field.Type().Elem()).Elem()
	}
	switch dst.Kind() {
	case reflect.Int:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("argument to %q must be a number", name)
		}
		if n < 0 {
			return fmt.Errorf("argument to %q must be a number greater than zero", name)
		}
		dst.SetInt(int64(n))
	case reflect.Bool:
		dst.SetBool(arg == "true")
	default:
		return fmt.Errorf("unsupported type for configuration key %q", name)
	}
	if field.Kind() == reflect.Ptr {
		field.Set(dst.Addr())
	}
	return nil
}

// configureSetRecordColor sets or, without a color, deletes the color of
// a kind of record.
func configureSetRecordColor(t *Term, field reflect.Value, rest string) error {
	args, err := splitArgs(rest)
	if err != nil {
		return err
	}
	switch len(args) {
	case 1:
		if !field.IsNil() {
			field.SetMapIndex(reflect.ValueOf(args[0]), reflect.Value{})
		}
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil || !validColor(n) {
			return fmt.Errorf("invalid color %q", args[1])
		}
		if field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
		field.SetMapIndex(reflect.ValueOf(args[0]), reflect.ValueOf(n))
	default:
		return fmt.Errorf("wrong number of arguments to \"config record-colors\"")
	}
	t.setColors()
	return nil
}

// configureSetAlias adds the alias in 'config alias <command> <alias>' or
// removes it in 'config alias <alias>'.
func configureSetAlias(t *Term, rest string) error {
	args, err := splitArgs(rest)
	if err != nil {
		return err
	}
	switch len(args) {
	case 1:
		for cmd, aliases := range t.conf.Aliases {
			kept := aliases[:0]
			for _, alias := range aliases {
				if alias != args[0] {
					kept = append(kept, alias)
				}
			}
			t.conf.Aliases[cmd] = kept
		}
	case 2:
		if t.conf.Aliases == nil {
			t.conf.Aliases = make(map[string][]string)
		}
		t.conf.Aliases[args[0]] = append(t.conf.Aliases[args[0]], args[1])
	default:
		return fmt.Errorf("wrong number of arguments to \"config alias\"")
	}
	t.cmds.Merge(t.conf.Aliases)
	return nil
}
