package info_test

import (
	"testing"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func TestVarCreate(t *testing.T) {
	r := info.NewVarCreateInfo(mi.Parse(`^done,name="var1",numchild="2",value="{...}",type="struct point",thread-id="1",has_more="0"`))
	if r.Name != "var1" || r.NumChild != 2 || r.Type != "struct point" || r.ThreadID != "1" || r.HasMore {
		t.Errorf("got %+v", r.Varobj)
	}
}

func TestVarListChildren(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"list", `^done,numchild="2",children=[child={name="var1.x",exp="x",numchild="0",value="1",type="int"},child={name="var1.y",exp="y",numchild="0",value="2",type="int"}],has_more="0"`},
		{"tuple", `^done,numchild="2",children={child={name="var1.x",exp="x",numchild="0",value="1",type="int"},child={name="var1.y",exp="y",numchild="0",value="2",type="int"}}`},
	}
	for _, tc := range tests {
		r := info.NewVarListChildrenInfo(mi.Parse(tc.line))
		if r.NumChild != 2 || len(r.Children) != 2 {
			t.Errorf("%s: got %+v", tc.name, r.Children)
			continue
		}
		if c := r.Children[1]; c.Name != "var1.y" || c.Expression != "y" || c.Value != "2" {
			t.Errorf("%s: child %+v", tc.name, c)
		}
	}
	if r := info.NewVarListChildrenInfo(mi.Parse(`^done,numchild="0",has_more="0"`)); r.Children != nil {
		t.Errorf("absent children: %#v", r.Children)
	}
}

func TestVarUpdate(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"list", `^done,changelist=[{name="var1",value="3",in_scope="true",type_changed="false",has_more="0"},` +
			`{name="var2",in_scope="false",type_changed="true",new_type="long",new_num_children="1",has_more="1",dynamic="1"}]`},
		{"flat", `^done,changelist={name="var1",value="3",in_scope="true",type_changed="false",` +
			`name="var2",in_scope="false",type_changed="true",new_type="long",new_num_children="1",has_more="1",dynamic="1"}`},
	}
	for _, tc := range tests {
		r := info.NewVarUpdateInfo(mi.Parse(tc.line))
		if len(r.Changes) != 2 {
			t.Errorf("%s: got %+v", tc.name, r.Changes)
			continue
		}
		c1, c2 := r.Changes[0], r.Changes[1]
		if c1.Name != "var1" || c1.Value != "3" || c1.OutOfScope() || c1.TypeChanged {
			t.Errorf("%s: first change %+v", tc.name, c1)
		}
		if c2.Name != "var2" || !c2.OutOfScope() || !c2.TypeChanged || c2.NewType != "long" || c2.NewNumChildren != 1 || !c2.HasMore || !c2.Dynamic {
			t.Errorf("%s: second change %+v", tc.name, c2)
		}
	}
	if r := info.NewVarUpdateInfo(mi.Parse(`^done,changelist=[]`)); r.Changes == nil || len(r.Changes) != 0 {
		t.Errorf("empty changelist: %#v", r.Changes)
	}
}

func TestVarUpdateNewChildren(t *testing.T) {
	r := info.NewVarUpdateInfo(mi.Parse(`^done,changelist=[{name="var1",in_scope="true",type_changed="false",displayhint="array",dynamic="1",has_more="0",` +
		`new_children=[{name="var1.[0]",exp="[0]",numchild="0",type="int",value="7"}]}]`))
	if len(r.Changes) != 1 || len(r.Changes[0].NewChildren) != 1 || r.Changes[0].NewChildren[0].Value != "7" || r.Changes[0].DisplayHint != "array" {
		t.Errorf("got %+v", r.Changes)
	}
}

func TestVarSimple(t *testing.T) {
	if r := info.NewVarEvaluateExpressionInfo(mi.Parse(`^done,value="3"`)); r.Value != "3" {
		t.Errorf("evaluate %q", r.Value)
	}
	if r := info.NewVarAssignInfo(mi.Parse(`^done,value="4"`)); r.Value != "4" {
		t.Errorf("assign %q", r.Value)
	}
	if r := info.NewVarInfoTypeInfo(mi.Parse(`^done,type="int *"`)); r.Type != "int *" {
		t.Errorf("type %q", r.Type)
	}
	if r := info.NewVarInfoNumChildrenInfo(mi.Parse(`^done,numchild="5"`)); r.NumChild != 5 {
		t.Errorf("numchild %d", r.NumChild)
	}
	if r := info.NewVarInfoExpressionInfo(mi.Parse(`^done,lang="C++",exp="m_size"`)); r.Lang != "C++" || r.Expression != "m_size" {
		t.Errorf("expression %+v", r)
	}
	if r := info.NewVarInfoPathExpressionInfo(mi.Parse(`^done,path_expr="((Base)c).m_size"`)); r.PathExpression != "((Base)c).m_size" {
		t.Errorf("path %q", r.PathExpression)
	}
	if r := info.NewVarShowAttributesInfo(mi.Parse(`^done,status="editable"`)); !r.Editable {
		t.Errorf("not editable")
	}
	if r := info.NewVarShowAttributesInfo(mi.Parse(`^done,attr="noneditable"`)); r.Editable {
		t.Errorf("editable")
	}
	if r := info.NewVarShowFormatInfo(mi.Parse(`^done,format="natural"`)); r.Format != "natural" {
		t.Errorf("format %q", r.Format)
	}
	if r := info.NewVarSetFormatInfo(mi.Parse(`^done,format="hexadecimal",value="0x3"`)); r.Format != "hexadecimal" || r.Value != "0x3" {
		t.Errorf("set format %+v", r)
	}
	if r := info.NewVarDeleteInfo(mi.Parse(`^done,ndeleted="3"`)); r.NumDeleted != 3 {
		t.Errorf("deleted %d", r.NumDeleted)
	}
}
