package latex

import (
	"reflect"
	"testing"
)

func TestScan_Includes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Include
	}{
		{
			name: "include and input",
			text: "\\include{chapters/intro}\n\\input{macros.tex}\n",
			want: []Include{
				{Kind: IncludeTex, Target: "chapters/intro"},
				{Kind: IncludeTex, Target: "macros.tex"},
			},
		},
		{
			name: "bibliography list",
			text: "\\bibliography{refs, extra}\n",
			want: []Include{
				{Kind: IncludeBib, Target: "refs"},
				{Kind: IncludeBib, Target: "extra"},
			},
		},
		{
			name: "addbibresource",
			text: "\\addbibresource{library.bib}\n",
			want: []Include{{Kind: IncludeBib, Target: "library.bib"}},
		},
		{
			name: "comment lines skipped",
			text: "% \\include{ghost}\n\\include{real}\n",
			want: []Include{{Kind: IncludeTex, Target: "real"}},
		},
		{
			name: "empty argument ignored",
			text: "\\include{}\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.text).Includes
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Includes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScan_Components(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "documentclass and packages",
			text: "\\documentclass{article}\n\\usepackage{amsmath}\n",
			want: []string{"article.cls", "amsmath.sty"},
		},
		{
			name: "package list with options",
			text: "\\usepackage[utf8]{inputenc}\n\\usepackage{amsmath, amssymb}\n",
			want: []string{"inputenc.sty", "amsmath.sty", "amssymb.sty"},
		},
		{
			name: "duplicates collapsed",
			text: "\\usepackage{amsmath}\n\\usepackage{amsmath}\n",
			want: []string{"amsmath.sty"},
		},
		{
			name: "RequirePackage",
			text: "\\RequirePackage{etoolbox}\n",
			want: []string{"etoolbox.sty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.text).Components
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Components = %v, want %v", got, tt.want)
			}
		})
	}
}
