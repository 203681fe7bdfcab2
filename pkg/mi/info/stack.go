package info

import (
	"github.com/go-delve/gdbmi/pkg/mi"
)

// Frame is a stack frame.
type Frame struct {
	Level    int
	Address  string
	Function string
	File     string
	Fullname string
	Line     int
	// From is the shared library containing the frame when there is no
	// debug information.
	From string
	Arch string
	// Args is nil when the frame tuple carries no args field.
	Args []Arg
}

// Arg is a function argument or a local variable.
type Arg struct {
	Name  string
	Type  string
	Value string
	// IsArg is set by -stack-list-variables for arguments.
	IsArg bool
}

// frame decodes a frame tuple.
func (i *Info) frame(t *mi.Tuple) Frame {
	f := Frame{
		Level:    i.num(t, "level", 0),
		Address:  i.str(t, "addr"),
		Function: i.str(t, "func"),
		File:     i.str(t, "file"),
		Fullname: i.str(t, "fullname"),
		Line:     i.num(t, "line", 0),
		From:     i.str(t, "from"),
		Arch:     i.str(t, "arch"),
	}
	if t.Field("args") != nil {
		f.Args = i.args(t, "args")
	}
	return f
}

// args decodes the aggregate called name, which holds either tuples,
// [{name="a",value="1"},...], or bare names, [name="a",name="b"].
func (i *Info) args(g getter, name string) []Arg {
	a := i.agg(g, name)
	if a == nil {
		return nil
	}
	args := []Arg{}
	for _, r := range a.Results() {
		switch v := r.Value().(type) {
		case *mi.Const:
			if r.Name() == "name" {
				args = append(args, Arg{Name: v.Text()})
			}
		case *mi.Tuple:
			args = append(args, i.arg(v))
		}
	}
	for _, v := range a.Values() {
		if t, ok := v.(*mi.Tuple); ok {
			args = append(args, i.arg(t))
		}
	}
	return args
}

func (i *Info) arg(t *mi.Tuple) Arg {
	return Arg{
		Name:  i.str(t, "name"),
		Type:  i.str(t, "type"),
		Value: i.display(t, "value"),
		IsArg: i.flag(t, "arg"),
	}
}

// DecodeFrame decodes a frame tuple, for example the one carried by a
// *stopped notification.
func DecodeFrame(t *mi.Tuple) (Frame, error) {
	var i Info
	var f Frame
	i.guard("frame", func() { f = i.frame(t) })
	return f, i.Issues()
}

// StackListFramesInfo is the result of -stack-list-frames.
type StackListFramesInfo struct {
	Info `yaml:"-"`

	Frames []Frame
}

// NewStackListFramesInfo decodes ^done,stack=[frame={...},...].
func NewStackListFramesInfo(out *mi.Output) *StackListFramesInfo {
	r := &StackListFramesInfo{Info: newInfo(out)}
	r.decode("stack-list-frames", func(rr *mi.ResultRecord) {
		frames, ok := r.tuples(rr, "stack")
		if !ok {
			return
		}
		r.Frames = make([]Frame, 0, len(frames))
		for _, t := range frames {
			r.Frames = append(r.Frames, r.frame(t))
		}
	})
	return r
}

// StackInfoDepthInfo is the result of -stack-info-depth.
type StackInfoDepthInfo struct {
	Info `yaml:"-"`

	Depth int
}

// NewStackInfoDepthInfo decodes ^done,depth="12".
func NewStackInfoDepthInfo(out *mi.Output) *StackInfoDepthInfo {
	r := &StackInfoDepthInfo{Info: newInfo(out)}
	r.decode("stack-info-depth", func(rr *mi.ResultRecord) {
		r.Depth = r.num(rr, "depth", 0)
	})
	return r
}

// StackInfoFrameInfo is the result of -stack-info-frame.
type StackInfoFrameInfo struct {
	Info `yaml:"-"`

	Frame *Frame
}

// NewStackInfoFrameInfo decodes ^done,frame={...}.
func NewStackInfoFrameInfo(out *mi.Output) *StackInfoFrameInfo {
	r := &StackInfoFrameInfo{Info: newInfo(out)}
	r.decode("stack-info-frame", func(rr *mi.ResultRecord) {
		if t := r.tup(rr, "frame"); t != nil {
			f := r.frame(t)
			r.Frame = &f
		}
	})
	return r
}

// FrameArgs are the arguments of the frame at Level.
type FrameArgs struct {
	Level int
	Args  []Arg
}

// StackListArgumentsInfo is the result of -stack-list-arguments.
type StackListArgumentsInfo struct {
	Info `yaml:"-"`

	Frames []FrameArgs
}

// NewStackListArgumentsInfo decodes
//
//	^done,stack-args=[frame={level="0",args=[{name="a",value="1"}]},...]
func NewStackListArgumentsInfo(out *mi.Output) *StackListArgumentsInfo {
	r := &StackListArgumentsInfo{Info: newInfo(out)}
	r.decode("stack-list-arguments", func(rr *mi.ResultRecord) {
		frames, ok := r.tuples(rr, "stack-args")
		if !ok {
			return
		}
		r.Frames = make([]FrameArgs, 0, len(frames))
		for _, t := range frames {
			fa := FrameArgs{Level: r.num(t, "level", 0), Args: r.args(t, "args")}
			if fa.Args == nil {
				fa.Args = []Arg{}
			}
			r.Frames = append(r.Frames, fa)
		}
	})
	return r
}

// StackListLocalsInfo is the result of -stack-list-locals.
type StackListLocalsInfo struct {
	Info `yaml:"-"`

	Locals []Arg
}

// NewStackListLocalsInfo decodes ^done,locals=[name="x",...] and
// ^done,locals=[{name="x",type="int",value="1"},...].
func NewStackListLocalsInfo(out *mi.Output) *StackListLocalsInfo {
	r := &StackListLocalsInfo{Info: newInfo(out)}
	r.decode("stack-list-locals", func(rr *mi.ResultRecord) {
		r.Locals = r.args(rr, "locals")
	})
	return r
}

// StackListVariablesInfo is the result of -stack-list-variables.
type StackListVariablesInfo struct {
	Info `yaml:"-"`

	Variables []Arg
}

// NewStackListVariablesInfo decodes
//
//	^done,variables=[{name="x",arg="1",value="1"},{name="y",value="2"}]
func NewStackListVariablesInfo(out *mi.Output) *StackListVariablesInfo {
	r := &StackListVariablesInfo{Info: newInfo(out)}
	r.decode("stack-list-variables", func(rr *mi.ResultRecord) {
		r.Variables = r.args(rr, "variables")
	})
	return r
}

// Args returns the variables that are function arguments.
func (r *StackListVariablesInfo) Args() []Arg {
	var args []Arg
	for _, v := range r.Variables {
		if v.IsArg {
			args = append(args, v)
		}
	}
	return args
}

// Locals returns the variables that are not function arguments.
func (r *StackListVariablesInfo) Locals() []Arg {
	var locals []Arg
	for _, v := range r.Variables {
		if !v.IsArg {
			locals = append(locals, v)
		}
	}
	return locals
}
