package info

import (
	"regexp"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

var versionRe = regexp.MustCompile(`\d+(\.\d+)+`)

// GDBVersionInfo is the console output of -gdb-version:
//
//	~"GNU gdb (Ubuntu 12.1-0ubuntu1~22.04) 12.1\n"
//	~"Copyright (C) 2022 Free Software Foundation, Inc.\n"
//
// or, from lldb-mi,
//
//	~"lldb version 16.0.0\n"
type GDBVersionInfo struct {
	Info `yaml:"-"`

	// FullText is the whole console output.
	FullText string
	// Version is the version number, "12.1", empty if none was found.
	Version string
	IsLLDB  bool
}

// NewGDBVersionInfo decodes the console output of -gdb-version.
func NewGDBVersionInfo(out *mi.Output) *GDBVersionInfo {
	r := &GDBVersionInfo{Info: newInfo(out)}
	r.decodeText("gdb-version", func(text string) {
		r.FullText = text
		first := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
		r.IsLLDB = strings.Contains(strings.ToLower(first), "lldb")
		r.Version = ParseVersion(first)
	})
	return r
}

// ParseVersion returns the version number in the first line of the output
// of -gdb-version. Distributions put their own version between
// parentheses so the number after the last closing parenthesis is
// preferred.
func ParseVersion(line string) string {
	if i := strings.LastIndexByte(line, ')'); i >= 0 {
		if v := versionRe.FindString(line[i+1:]); v != "" {
			return v
		}
	}
	return versionRe.FindString(line)
}

// GDBShowExitCodeInfo is the result of -gdb-show $_exitcode.
type GDBShowExitCodeInfo struct {
	Info `yaml:"-"`

	// Known is false until the inferior exits, GDB prints "void".
	Known bool
	Code  int
}

// NewGDBShowExitCodeInfo decodes ^done,value="0" and ^done,value="void".
func NewGDBShowExitCodeInfo(out *mi.Output) *GDBShowExitCodeInfo {
	r := &GDBShowExitCodeInfo{Info: newInfo(out)}
	r.decode("gdb-show $_exitcode", func(rr *mi.ResultRecord) {
		v := strings.TrimSpace(r.str(rr, "value"))
		if v == "" || v == "void" {
			return
		}
		r.Code = r.atoi("value", v, 0)
		r.Known = true
	})
	return r
}

// GDBShowInfo is the result of -gdb-show.
type GDBShowInfo struct {
	Info `yaml:"-"`

	Value string
}

// NewGDBShowInfo decodes ^done,value="on".
func NewGDBShowInfo(out *mi.Output) *GDBShowInfo {
	r := &GDBShowInfo{Info: newInfo(out)}
	r.decode("gdb-show", func(rr *mi.ResultRecord) {
		r.Value = r.str(rr, "value")
	})
	return r
}

var currentlyRe = regexp.MustCompile(`currently (\S+?)\.?$`)

// GDBShowLanguageInfo is the result of -gdb-show language.
type GDBShowLanguageInfo struct {
	Info `yaml:"-"`

	// Language is the effective language: "c" for "auto; currently c".
	Language string
}

// NewGDBShowLanguageInfo decodes ^done,value="auto; currently c" and
// ^done,value="c++".
func NewGDBShowLanguageInfo(out *mi.Output) *GDBShowLanguageInfo {
	r := &GDBShowLanguageInfo{Info: newInfo(out)}
	r.decode("gdb-show language", func(rr *mi.ResultRecord) {
		v := strings.TrimSpace(r.str(rr, "value"))
		if m := currentlyRe.FindStringSubmatch(v); m != nil {
			v = m[1]
		}
		r.Language = v
	})
	return r
}

// ListFeaturesInfo is the result of -list-features and
// -list-target-features.
type ListFeaturesInfo struct {
	Info `yaml:"-"`

	Features []string
}

// NewListFeaturesInfo decodes ^done,features=["frozen-varobjs","pending-breakpoints",...].
func NewListFeaturesInfo(out *mi.Output) *ListFeaturesInfo {
	r := &ListFeaturesInfo{Info: newInfo(out)}
	r.decode("list-features", func(rr *mi.ResultRecord) {
		r.Features = r.strs(rr, "features")
	})
	return r
}

// Has returns true if feature is in the list.
func (r *ListFeaturesInfo) Has(feature string) bool {
	for _, f := range r.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// TargetDownloadInfo is the final result of -target-download.
type TargetDownloadInfo struct {
	Info `yaml:"-"`

	Address      string
	LoadSize     int
	TransferRate int
	WriteRate    int
}

// NewTargetDownloadInfo decodes
//
//	^done,address="0x10004",load-size="32",transfer-rate="6586",write-rate="429"
func NewTargetDownloadInfo(out *mi.Output) *TargetDownloadInfo {
	r := &TargetDownloadInfo{Info: newInfo(out)}
	r.decode("target-download", func(rr *mi.ResultRecord) {
		r.Address = r.str(rr, "address")
		r.LoadSize = r.num(rr, "load-size", 0)
		r.TransferRate = r.num(rr, "transfer-rate", 0)
		r.WriteRate = r.num(rr, "write-rate", 0)
	})
	return r
}

// AddInferiorInfo is the result of -add-inferior.
type AddInferiorInfo struct {
	Info `yaml:"-"`

	GroupID string
}

// NewAddInferiorInfo decodes ^done,inferior="i2".
func NewAddInferiorInfo(out *mi.Output) *AddInferiorInfo {
	r := &AddInferiorInfo{Info: newInfo(out)}
	r.decode("add-inferior", func(rr *mi.ResultRecord) {
		r.GroupID = r.str(rr, "inferior")
	})
	return r
}

// InfoOsInfo is the result of -info-os. Without a type argument GDB lists
// the available types, with one it lists the objects of that type.
type InfoOsInfo struct {
	Info `yaml:"-"`

	// Columns are the column headers, Rows the values in the same order.
	Columns []string
	Rows    [][]string
}

// NewInfoOsInfo decodes
//
//	^done,OSDataTable={nr_rows="2",nr_cols="3",
//	hdr=[{width="10",alignment="-1",col_name="col0",colhdr="Type"},...],
//	body=[item={col0="cpus",col1="Listing of all cpus/cores on the system",col2="CPUs"},...]}
func NewInfoOsInfo(out *mi.Output) *InfoOsInfo {
	r := &InfoOsInfo{Info: newInfo(out)}
	r.decode("info-os", func(rr *mi.ResultRecord) {
		table := r.tup(rr, "OSDataTable")
		if table == nil {
			return
		}
		var names []string
		hdr, _ := r.tuples(table, "hdr")
		r.Columns = make([]string, 0, len(hdr))
		for _, h := range hdr {
			names = append(names, r.str(h, "col_name"))
			r.Columns = append(r.Columns, r.str(h, "colhdr"))
		}
		body, _ := r.tuples(table, "body")
		r.Rows = make([][]string, 0, len(body))
		for _, item := range body {
			if names == nil {
				row := []string{}
				for _, res := range item.Results() {
					if c, ok := res.Value().(*mi.Const); ok {
						row = append(row, c.Text())
					}
				}
				r.Rows = append(r.Rows, row)
				continue
			}
			row := make([]string, len(names))
			for j, name := range names {
				row[j] = r.str(item, name)
			}
			r.Rows = append(r.Rows, row)
		}
	})
	return r
}

// Symbol is a function symbol.
type Symbol struct {
	Filename    string
	Fullname    string
	Line        int
	Name        string
	Type        string
	Description string
	// Address is only set for symbols without debug information.
	Address string
}

// SymbolInfoFunctionsInfo is the result of -symbol-info-functions.
type SymbolInfoFunctionsInfo struct {
	Info `yaml:"-"`

	Debug    []Symbol
	NonDebug []Symbol
}

// NewSymbolInfoFunctionsInfo decodes
//
//	^done,symbols={debug=[{filename="a.c",fullname="/a.c",symbols=[{line="4",name="main",type="int (void)",description="int main(void);"}]}],
//	nondebug=[{address="0x401000",name="_init"}]}
func NewSymbolInfoFunctionsInfo(out *mi.Output) *SymbolInfoFunctionsInfo {
	r := &SymbolInfoFunctionsInfo{Info: newInfo(out)}
	r.decode("symbol-info-functions", func(rr *mi.ResultRecord) {
		syms := r.tup(rr, "symbols")
		if syms == nil {
			return
		}
		if files, ok := r.tuples(syms, "debug"); ok {
			r.Debug = []Symbol{}
			for _, f := range files {
				filename, fullname := r.str(f, "filename"), r.str(f, "fullname")
				inner, _ := r.tuples(f, "symbols")
				for _, s := range inner {
					r.Debug = append(r.Debug, Symbol{
						Filename:    filename,
						Fullname:    fullname,
						Line:        r.num(s, "line", 0),
						Name:        r.str(s, "name"),
						Type:        r.str(s, "type"),
						Description: r.str(s, "description"),
					})
				}
			}
		}
		if nondebug, ok := r.tuples(syms, "nondebug"); ok {
			r.NonDebug = make([]Symbol, 0, len(nondebug))
			for _, s := range nondebug {
				r.NonDebug = append(r.NonDebug, Symbol{
					Address: r.str(s, "address"),
					Name:    r.str(s, "name"),
				})
			}
		}
	})
	return r
}
