package mi

import (
	"strconv"

	"gopkg.in/yaml.v2"
)

// ToYAML converts v into a tree that yaml.Marshal renders in wire order.
// Constants become their display string, aggregates with results become a
// yaml.MapSlice (bare values are keyed by their index) and aggregates
// without results become a slice.
func ToYAML(v Value) interface{} {
	switch v := v.(type) {
	case *Const:
		return v.Display()
	case Aggregate:
		if len(v.Results()) == 0 {
			r := make([]interface{}, 0, len(v.Values()))
			for _, e := range v.Values() {
				r = append(r, ToYAML(e))
			}
			return r
		}
		return resultsToYAML(v.Results(), v.Values())
	}
	return nil
}

func resultsToYAML(results []*Result, values []Value) yaml.MapSlice {
	r := make(yaml.MapSlice, 0, len(results)+len(values))
	for _, res := range results {
		r = append(r, yaml.MapItem{Key: res.Name(), Value: ToYAML(res.Value())})
	}
	for i, v := range values {
		r = append(r, yaml.MapItem{Key: "[" + strconv.Itoa(i) + "]", Value: ToYAML(v)})
	}
	return r
}

// RecordToYAML converts a record into a yaml.MapSlice describing its kind,
// token and contents.
func RecordToYAML(rec Record) yaml.MapSlice {
	r := yaml.MapSlice{{Key: "kind", Value: rec.Kind().String()}}
	if rec.Token() != NoToken {
		r = append(r, yaml.MapItem{Key: "token", Value: rec.Token()})
	}
	switch rec := rec.(type) {
	case *ResultRecord:
		r = append(r, yaml.MapItem{Key: "class", Value: rec.Class().String()})
		if rec.Fields().Len() > 0 {
			r = append(r, yaml.MapItem{Key: "results", Value: resultsToYAML(rec.Results(), rec.Fields().Values())})
		}
	case *AsyncRecord:
		r = append(r, yaml.MapItem{Key: "type", Value: rec.AsyncKind().String()})
		r = append(r, yaml.MapItem{Key: "class", Value: rec.Class()})
		if rec.Fields().Len() > 0 {
			r = append(r, yaml.MapItem{Key: "results", Value: resultsToYAML(rec.Results(), rec.Fields().Values())})
		}
	case *StreamRecord:
		r = append(r, yaml.MapItem{Key: "type", Value: rec.StreamKind().String()})
		r = append(r, yaml.MapItem{Key: "text", Value: rec.Text()})
		if rec.Synthetic() {
			r = append(r, yaml.MapItem{Key: "synthetic", Value: true})
		}
	}
	return r
}

// OutputToYAML converts every record of o, in order.
func OutputToYAML(o *Output) []yaml.MapSlice {
	var r []yaml.MapSlice
	if o.IsPrompt() {
		return append(r, RecordToYAML(&PromptRecord{}))
	}
	for _, rec := range o.OOBRecords() {
		r = append(r, RecordToYAML(rec))
	}
	for _, rec := range o.StreamRecords() {
		r = append(r, RecordToYAML(rec))
	}
	if rec := o.Record(); rec != nil {
		r = append(r, RecordToYAML(rec))
	}
	if rr := o.ResultRecord(); rr != nil {
		r = append(r, RecordToYAML(rr))
	}
	return r
}
