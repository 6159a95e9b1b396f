package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectItemLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"wavetree"},
			want: []string{"wavetree"},
		},
		{
			name: "direct ref first token",
			in:   []string{"wavetree", "12"},
			want: []string{"wavetree", "item", "12"},
		},
		{
			name: "direct ref after value flag",
			in:   []string{"wavetree", "--dir", "./tmp-session", "3"},
			want: []string{"wavetree", "--dir", "./tmp-session", "item", "3"},
		},
		{
			name: "direct ref after equals flag",
			in:   []string{"wavetree", "--session=work", "3"},
			want: []string{"wavetree", "--session=work", "item", "3"},
		},
		{
			name: "direct ref after bool flag",
			in:   []string{"wavetree", "--pretty", "3"},
			want: []string{"wavetree", "--pretty", "item", "3"},
		},
		{
			name: "direct ref after double dash",
			in:   []string{"wavetree", "--dir", "./tmp-session", "--", "3"},
			want: []string{"wavetree", "--dir", "./tmp-session", "item", "--", "3"},
		},
		{
			name: "zero is not a ref",
			in:   []string{"wavetree", "0"},
			want: []string{"wavetree", "0"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"wavetree", "rm", "3"},
			want: []string{"wavetree", "rm", "3"},
		},
		{
			name: "numeric flag value not taken for a ref",
			in:   []string{"wavetree", "--format", "json", "ls"},
			want: []string{"wavetree", "--format", "json", "ls"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectItemLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}
