package info

import (
	"regexp"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// AddressRange is a half open range of addresses.
type AddressRange struct {
	From string
	To   string
}

// SharedLibrary is a shared library loaded by the inferior.
type SharedLibrary struct {
	ID          string
	TargetName  string
	HostName    string
	ThreadGroup string
	// SymbolsLoaded is set when GDB has read the symbols of the library.
	SymbolsLoaded bool
	// NoDebugInfo is set by info sharedlibrary for "Yes (*)" rows.
	NoDebugInfo bool
	Ranges      []AddressRange
}

// Name returns the most specific name of the library.
func (l *SharedLibrary) Name() string {
	for _, s := range []string{l.HostName, l.TargetName, l.ID} {
		if s != "" {
			return s
		}
	}
	return ""
}

// DecodeSharedLibrary decodes the fields of a library, for example the
// results of a =library-loaded notification.
func DecodeSharedLibrary(t *mi.Tuple) (SharedLibrary, error) {
	var i Info
	var l SharedLibrary
	i.guard("library", func() { l = i.sharedLibrary(t) })
	return l, i.Issues()
}

func (i *Info) sharedLibrary(t *mi.Tuple) SharedLibrary {
	l := SharedLibrary{
		ID:            i.str(t, "id"),
		TargetName:    i.str(t, "target-name"),
		HostName:      i.str(t, "host-name"),
		ThreadGroup:   i.str(t, "thread-group"),
		SymbolsLoaded: i.flag(t, "symbols-loaded"),
	}
	if ranges, ok := i.tuples(t, "ranges"); ok {
		l.Ranges = make([]AddressRange, 0, len(ranges))
		for _, r := range ranges {
			l.Ranges = append(l.Ranges, AddressRange{From: i.str(r, "from"), To: i.str(r, "to")})
		}
	} else if from := i.str(t, "low-address"); from != "" {
		l.Ranges = []AddressRange{{From: from, To: i.str(t, "high-address")}}
	}
	return l
}

// FileListSharedLibrariesInfo is the result of -file-list-shared-libraries.
type FileListSharedLibrariesInfo struct {
	Info `yaml:"-"`

	Libraries []SharedLibrary
}

// NewFileListSharedLibrariesInfo decodes
//
//	^done,shared-libraries=[{id="/lib/libfoo.so",target-name="/lib/libfoo.so",host-name="/lib/libfoo.so",
//	symbols-loaded="1",thread-group="i1",ranges=[{from="0x72815989",to="0x728162c0"}]}]
func NewFileListSharedLibrariesInfo(out *mi.Output) *FileListSharedLibrariesInfo {
	r := &FileListSharedLibrariesInfo{Info: newInfo(out)}
	r.decode("file-list-shared-libraries", func(rr *mi.ResultRecord) {
		libs, ok := r.tuples(rr, "shared-libraries")
		if !ok {
			return
		}
		r.Libraries = make([]SharedLibrary, 0, len(libs))
		for _, t := range libs {
			r.Libraries = append(r.Libraries, r.sharedLibrary(t))
		}
	})
	return r
}

var (
	gdbSharedLibRe  = regexp.MustCompile(`^\s*(?:(0x[0-9a-fA-F]+)\s+(0x[0-9a-fA-F]+)\s+)?(Yes \(\*\)|Yes|No)\s+(\S.*)$`)
	lldbSharedLibRe = regexp.MustCompile(`^\[\s*\d+\]\s+(?:[0-9A-Fa-f-]+\s+)?(0x[0-9a-fA-F]+)\s+(\S.*)$`)
)

// CLIInfoSharedLibraryInfo is the console output of info sharedlibrary.
// GDB prints a table:
//
//	From                To                  Syms Read   Shared Object Library
//	0x00007ffff7fc5090  0x00007ffff7fee315  Yes         /lib64/ld-linux-x86-64.so.2
//	                                        No          /lib/libfoo.so
//	0x00007ffff7dab630  0x00007ffff7f2027d  Yes (*)     /lib/x86_64-linux-gnu/libc.so.6
//
// lldb-mi prints the image list:
//
//	[  0] 0A1B2C3D-0000-0000-0000-000000000000 0x0000000100000000 /tmp/a.out
type CLIInfoSharedLibraryInfo struct {
	Info `yaml:"-"`

	Libraries []SharedLibrary
}

// NewCLIInfoSharedLibraryInfo decodes the console output of info
// sharedlibrary.
func NewCLIInfoSharedLibraryInfo(out *mi.Output) *CLIInfoSharedLibraryInfo {
	r := &CLIInfoSharedLibraryInfo{Info: newInfo(out)}
	r.decodeText("info sharedlibrary", func(text string) {
		r.Libraries = []SharedLibrary{}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, "\r")
			if m := gdbSharedLibRe.FindStringSubmatch(line); m != nil {
				if strings.HasPrefix(m[4], "shared libraries") {
					// No shared libraries loaded at this time.
					continue
				}
				l := SharedLibrary{
					HostName:      strings.TrimSpace(m[4]),
					SymbolsLoaded: strings.HasPrefix(m[3], "Yes"),
					NoDebugInfo:   m[3] == "Yes (*)",
				}
				if m[1] != "" {
					l.Ranges = []AddressRange{{From: m[1], To: m[2]}}
				}
				r.Libraries = append(r.Libraries, l)
				continue
			}
			if m := lldbSharedLibRe.FindStringSubmatch(line); m != nil {
				r.Libraries = append(r.Libraries, SharedLibrary{
					HostName:      strings.TrimSpace(m[2]),
					SymbolsLoaded: true,
					Ranges:        []AddressRange{{From: m[1]}},
				})
			}
		}
	})
	return r
}
