package info

import (
	"github.com/go-delve/gdbmi/pkg/mi"
)

// Varobj is a variable object, as returned by -var-create and in the
// children of -var-list-children.
type Varobj struct {
	Name        string
	Expression  string
	NumChild    int
	Value       string
	Type        string
	ThreadID    string
	Frozen      bool
	DisplayHint string
	Dynamic     bool
	HasMore     bool
}

func (i *Info) varobj(g getter) Varobj {
	return Varobj{
		Name:        i.str(g, "name"),
		Expression:  i.str(g, "exp"),
		NumChild:    i.num(g, "numchild", 0),
		Value:       i.display(g, "value"),
		Type:        i.str(g, "type"),
		ThreadID:    i.str(g, "thread-id"),
		Frozen:      i.flag(g, "frozen"),
		DisplayHint: i.str(g, "displayhint"),
		Dynamic:     i.flag(g, "dynamic"),
		HasMore:     i.flag(g, "has_more"),
	}
}

// VarCreateInfo is the result of -var-create.
type VarCreateInfo struct {
	Info   `yaml:"-"`
	Varobj `yaml:",inline"`
}

// NewVarCreateInfo decodes
//
//	^done,name="var1",numchild="0",value="3",type="int",thread-id="1",has_more="0"
func NewVarCreateInfo(out *mi.Output) *VarCreateInfo {
	r := &VarCreateInfo{Info: newInfo(out)}
	r.decode("var-create", func(rr *mi.ResultRecord) {
		r.Varobj = r.varobj(rr)
	})
	return r
}

// VarListChildrenInfo is the result of -var-list-children.
type VarListChildrenInfo struct {
	Info `yaml:"-"`

	Children []Varobj
	NumChild int
	HasMore  bool
}

// NewVarListChildrenInfo decodes
//
//	^done,numchild="2",children=[child={name="var1.a",exp="a",numchild="0",type="int"},...],has_more="0"
//
// and the children={child={...},child={...}} tuple form of older versions.
func NewVarListChildrenInfo(out *mi.Output) *VarListChildrenInfo {
	r := &VarListChildrenInfo{Info: newInfo(out)}
	r.decode("var-list-children", func(rr *mi.ResultRecord) {
		r.NumChild = r.num(rr, "numchild", 0)
		r.HasMore = r.flag(rr, "has_more")
		children, ok := r.tuples(rr, "children")
		if !ok {
			return
		}
		r.Children = make([]Varobj, 0, len(children))
		for _, t := range children {
			r.Children = append(r.Children, r.varobj(t))
		}
	})
	return r
}

// VarChange is an element of the changelist of -var-update.
type VarChange struct {
	Name           string
	Value          string
	InScope        string
	TypeChanged    bool
	NewType        string
	NewNumChildren int
	HasMore        bool
	Dynamic        bool
	DisplayHint    string
	NewChildren    []Varobj
}

// OutOfScope returns true if the varobj went out of scope. GDB also uses
// "invalid" for varobjs that can no longer be evaluated.
func (c *VarChange) OutOfScope() bool {
	return c.InScope == "false" || c.InScope == "invalid"
}

// VarUpdateInfo is the result of -var-update.
type VarUpdateInfo struct {
	Info `yaml:"-"`

	Changes []VarChange
}

// NewVarUpdateInfo decodes
//
//	^done,changelist=[{name="var1",value="3",in_scope="true",type_changed="false",has_more="0"}]
//
// and the flat changelist={name="var1",in_scope="true",name="var2",...} form
// of older versions, in which every name starts a new change.
func NewVarUpdateInfo(out *mi.Output) *VarUpdateInfo {
	r := &VarUpdateInfo{Info: newInfo(out)}
	r.decode("var-update", func(rr *mi.ResultRecord) {
		list := r.agg(rr, "changelist")
		if list == nil {
			return
		}
		r.Changes = []VarChange{}
		var cur *VarChange
		for _, res := range list.Results() {
			if t, ok := res.Value().(*mi.Tuple); ok {
				r.Changes = append(r.Changes, r.varChange(t))
				cur = nil
				continue
			}
			c, ok := res.Value().(*mi.Const)
			if !ok {
				continue
			}
			if res.Name() == "name" {
				r.Changes = append(r.Changes, VarChange{Name: c.Text()})
				cur = &r.Changes[len(r.Changes)-1]
				continue
			}
			if cur == nil {
				r.issuef("changelist: %s outside of a change", res.Name())
				continue
			}
			r.setChange(cur, res.Name(), c)
		}
		for _, v := range list.Values() {
			if t, ok := v.(*mi.Tuple); ok {
				r.Changes = append(r.Changes, r.varChange(t))
			}
		}
	})
	return r
}

func (i *Info) varChange(t *mi.Tuple) VarChange {
	var c VarChange
	for _, res := range t.Results() {
		if cst, ok := res.Value().(*mi.Const); ok {
			i.setChange(&c, res.Name(), cst)
		}
	}
	if t.Field("new_children") != nil {
		kids, _ := i.tuples(t, "new_children")
		c.NewChildren = make([]Varobj, 0, len(kids))
		for _, k := range kids {
			c.NewChildren = append(c.NewChildren, i.varobj(k))
		}
	}
	return c
}

func (i *Info) setChange(c *VarChange, name string, v *mi.Const) {
	switch name {
	case "name":
		c.Name = v.Text()
	case "value":
		c.Value = v.Display()
	case "in_scope":
		c.InScope = v.Text()
	case "type_changed":
		c.TypeChanged = v.Text() == "true"
	case "new_type":
		c.NewType = v.Text()
	case "new_num_children":
		c.NewNumChildren = i.atoi(name, v.Text(), 0)
	case "has_more":
		c.HasMore = isTrue(v.Text())
	case "dynamic":
		c.Dynamic = isTrue(v.Text())
	case "displayhint":
		c.DisplayHint = v.Text()
	}
}

// VarEvaluateExpressionInfo is the result of -var-evaluate-expression.
type VarEvaluateExpressionInfo struct {
	Info `yaml:"-"`

	Value string
}

// NewVarEvaluateExpressionInfo decodes ^done,value="3".
func NewVarEvaluateExpressionInfo(out *mi.Output) *VarEvaluateExpressionInfo {
	r := &VarEvaluateExpressionInfo{Info: newInfo(out)}
	r.decode("var-evaluate-expression", func(rr *mi.ResultRecord) {
		r.Value = r.display(rr, "value")
	})
	return r
}

// VarAssignInfo is the result of -var-assign.
type VarAssignInfo struct {
	Info `yaml:"-"`

	Value string
}

// NewVarAssignInfo decodes ^done,value="4".
func NewVarAssignInfo(out *mi.Output) *VarAssignInfo {
	r := &VarAssignInfo{Info: newInfo(out)}
	r.decode("var-assign", func(rr *mi.ResultRecord) {
		r.Value = r.display(rr, "value")
	})
	return r
}

// VarInfoTypeInfo is the result of -var-info-type.
type VarInfoTypeInfo struct {
	Info `yaml:"-"`

	Type string
}

// NewVarInfoTypeInfo decodes ^done,type="int".
func NewVarInfoTypeInfo(out *mi.Output) *VarInfoTypeInfo {
	r := &VarInfoTypeInfo{Info: newInfo(out)}
	r.decode("var-info-type", func(rr *mi.ResultRecord) {
		r.Type = r.str(rr, "type")
	})
	return r
}

// VarInfoNumChildrenInfo is the result of -var-info-num-children.
type VarInfoNumChildrenInfo struct {
	Info `yaml:"-"`

	NumChild int
}

// NewVarInfoNumChildrenInfo decodes ^done,numchild="2".
func NewVarInfoNumChildrenInfo(out *mi.Output) *VarInfoNumChildrenInfo {
	r := &VarInfoNumChildrenInfo{Info: newInfo(out)}
	r.decode("var-info-num-children", func(rr *mi.ResultRecord) {
		r.NumChild = r.num(rr, "numchild", 0)
	})
	return r
}

// VarInfoExpressionInfo is the result of -var-info-expression.
type VarInfoExpressionInfo struct {
	Info `yaml:"-"`

	Lang       string
	Expression string
}

// NewVarInfoExpressionInfo decodes ^done,lang="C",exp="a".
func NewVarInfoExpressionInfo(out *mi.Output) *VarInfoExpressionInfo {
	r := &VarInfoExpressionInfo{Info: newInfo(out)}
	r.decode("var-info-expression", func(rr *mi.ResultRecord) {
		r.Lang = r.str(rr, "lang")
		r.Expression = r.str(rr, "exp")
	})
	return r
}

// VarInfoPathExpressionInfo is the result of -var-info-path-expression.
type VarInfoPathExpressionInfo struct {
	Info `yaml:"-"`

	PathExpression string
}

// NewVarInfoPathExpressionInfo decodes ^done,path_expr="((Base)c).m_size".
func NewVarInfoPathExpressionInfo(out *mi.Output) *VarInfoPathExpressionInfo {
	r := &VarInfoPathExpressionInfo{Info: newInfo(out)}
	r.decode("var-info-path-expression", func(rr *mi.ResultRecord) {
		r.PathExpression = r.str(rr, "path_expr")
	})
	return r
}

// VarShowAttributesInfo is the result of -var-show-attributes.
type VarShowAttributesInfo struct {
	Info `yaml:"-"`

	Editable bool
}

// NewVarShowAttributesInfo decodes ^done,status="editable" and the
// attr="noneditable" spelling.
func NewVarShowAttributesInfo(out *mi.Output) *VarShowAttributesInfo {
	r := &VarShowAttributesInfo{Info: newInfo(out)}
	r.decode("var-show-attributes", func(rr *mi.ResultRecord) {
		attr := r.str(rr, "status")
		if attr == "" {
			attr = r.str(rr, "attr")
		}
		r.Editable = attr == "editable"
	})
	return r
}

// VarShowFormatInfo is the result of -var-show-format.
type VarShowFormatInfo struct {
	Info `yaml:"-"`

	Format string
}

// NewVarShowFormatInfo decodes ^done,format="natural".
func NewVarShowFormatInfo(out *mi.Output) *VarShowFormatInfo {
	r := &VarShowFormatInfo{Info: newInfo(out)}
	r.decode("var-show-format", func(rr *mi.ResultRecord) {
		r.Format = r.str(rr, "format")
	})
	return r
}

// VarSetFormatInfo is the result of -var-set-format.
type VarSetFormatInfo struct {
	Info `yaml:"-"`

	Format string
	Value  string
}

// NewVarSetFormatInfo decodes ^done,format="hexadecimal",value="0x3".
func NewVarSetFormatInfo(out *mi.Output) *VarSetFormatInfo {
	r := &VarSetFormatInfo{Info: newInfo(out)}
	r.decode("var-set-format", func(rr *mi.ResultRecord) {
		r.Format = r.str(rr, "format")
		r.Value = r.display(rr, "value")
	})
	return r
}

// VarDeleteInfo is the result of -var-delete.
type VarDeleteInfo struct {
	Info `yaml:"-"`

	NumDeleted int
}

// NewVarDeleteInfo decodes ^done,ndeleted="3".
func NewVarDeleteInfo(out *mi.Output) *VarDeleteInfo {
	r := &VarDeleteInfo{Info: newInfo(out)}
	r.decode("var-delete", func(rr *mi.ResultRecord) {
		r.NumDeleted = r.num(rr, "ndeleted", 0)
	})
	return r
}
