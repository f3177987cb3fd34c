package book

import "testing"

func TestSerializeFragmentRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"void element self-closes", `<p><img src="1x1.jpg"/></p>`, `<p><img src="1x1.jpg"/></p>`},
		{"unclosed void element", `<p><br></p>`, `<p><br/></p>`},
		{"empty element keeps end tag", `<span data-type="x"></span>`, `<span data-type="x"></span>`},
		{"text escaping", `<p>a & b < c</p>`, `<p>a &amp; b &lt; c</p>`},
		{"attribute escaping", `<a href="?a=1&amp;b=2">x</a>`, `<a href="?a=1&amp;b=2">x</a>`},
		{"comment survives", `<!--note--><p>x</p>`, `<!--note--><p>x</p>`},
		{"unicode stays literal", `<p>チョコレート</p>`, `<p>チョコレート</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ParseFragment([]byte(tt.in))
			if err != nil {
				t.Fatalf("ParseFragment returned error: %v", err)
			}
			if got := string(SerializeFragment(root)); got != tt.want {
				t.Fatalf("SerializeFragment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeNodeIncludesTags(t *testing.T) {
	root, err := ParseFragment([]byte(`<div class="outer"><p>x</p></div>`))
	if err != nil {
		t.Fatalf("ParseFragment returned error: %v", err)
	}
	got := string(SerializeNode(root.FirstChild))
	want := `<div class="outer"><p>x</p></div>`
	if got != want {
		t.Fatalf("SerializeNode = %q, want %q", got, want)
	}
}
